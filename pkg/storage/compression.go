package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

func CompressData(inData []byte, bbufOut *bytes.Buffer) error {
	inputBuf := bytes.NewBuffer(inData)
	encoder, err := zstd.NewWriter(bbufOut, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	_, err = io.Copy(encoder, inputBuf)
	if err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

func DecompressData(in io.Reader, out io.Writer) error {
	d, err := zstd.NewReader(in)
	if err != nil {
		return fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer d.Close()

	_, err = io.Copy(out, d)
	return err
}
