// Package images converts uploaded files into the byte sequence
// & content type stored on a contact.
package images

import (
	"io/ioutil"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

// ConvertFileToBytes reads an uploaded file into memory and returns its
// bytes along with the content type from the file handle. When the upload
// carries no content-type header, the type is sniffed from the bytes.
func ConvertFileToBytes(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", errors.Wrap(err, "ConvertFileToBytes")
	}
	defer file.Close()

	data, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, "", errors.Wrap(err, "ConvertFileToBytes")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}
