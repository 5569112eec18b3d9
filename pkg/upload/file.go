package upload

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// OpenFile builds a File for a path on the local filesystem.
//
// The content type comes from the file extension, the way a browser
// reports it for a picked file. Files with an unknown extension are
// sniffed with http.DetectContentType.
func OpenFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}

	contentType := mediaType(mime.TypeByExtension(filepath.Ext(path)))
	if contentType == "" {
		contentType, err = sniff(path)
		if err != nil {
			return File{}, err
		}
	}

	return File{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// mediaType strips parameters such as "; charset=utf-8".
func mediaType(v string) string {
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return v
	}
	return mt
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return mediaType(http.DetectContentType(buf[:n])), nil
}
