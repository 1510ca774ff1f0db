package main

import (
	"fmt"
	"io"
	"os"

	pb "gopkg.in/cheggaaa/pb.v1"
)

// progressReader tracks bytes read from a file on a stderr progress bar.
// Close clears the bar line and closes the file.
type progressReader struct {
	r   io.Reader
	f   *os.File
	bar *pb.ProgressBar
}

func openWithProgress(path string, show bool) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if !show {
		return f, fi.Size(), nil
	}

	bar := pb.New64(fi.Size()).SetUnits(pb.U_BYTES_DEC).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()

	return &progressReader{r: bar.NewProxyReader(f), f: f, bar: bar}, fi.Size(), nil
}

func (p *progressReader) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *progressReader) Close() error {
	p.bar.Output = nil
	p.bar.NotPrint = true
	p.bar.Finish()
	fmt.Fprint(os.Stderr, "\033[2K\r")
	return p.f.Close()
}
