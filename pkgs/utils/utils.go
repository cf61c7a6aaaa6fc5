// Package utils holds small filesystem helpers shared across the app.
package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// SaveToFile writes everything from reader to fileName,
// creating missing directories on the way.
func SaveToFile(reader io.Reader, fileName string) (err error) {
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return err
	}
	out, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	if _, err = io.Copy(out, reader); err != nil {
		return err
	}
	return out.Sync()
}
