package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/djdv/go-setassoc/internal/config"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// reportWriter returns where result lines go:
// the command's output when no report file is configured,
// a plain file for non-regular paths such as pipes,
// or a size-rotated file otherwise.
func reportWriter(stdout io.Writer, c config.Config) (io.WriteCloser, error) {
	fileName := c.ReportFile
	if fileName == "" || fileName == "-" {
		return nopCloser{stdout}, nil
	}
	if st, _ := os.Stat(fileName); st != nil && !st.Mode().IsRegular() {
		if st.Mode().IsDir() {
			return nil, errors.Errorf("[%v] is a directory", fileName)
		}
		fp, err := os.OpenFile(fileName, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to access [%v]", fileName)
		}
		return fp, nil
	}
	return &lumberjack.Logger{
		LocalTime:  true,
		MaxSize:    c.ReportMaxSize,
		MaxBackups: c.ReportMaxBackups,
		Filename:   fileName,
		Compress:   true,
	}, nil
}
