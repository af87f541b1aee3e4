package handler

import (
	"io"
	"mime/multipart"

	"storefront/internal/domain/model"
)

// 1ファイルの上限（usecase側でも確認する）
const maxFormFileBytes = 20 << 20

func readUpload(fh *multipart.FileHeader) (model.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFormFileBytes+1))
	if err != nil {
		return model.Upload{}, err
	}
	return model.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readUploads(fhs []*multipart.FileHeader) ([]model.Upload, error) {
	out := make([]model.Upload, 0, len(fhs))
	for _, fh := range fhs {
		u, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
