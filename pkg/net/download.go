package net

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Open starts a streaming GET and returns the response body along with the
// reported content length (-1 when unknown). The caller owns the closer.
func Open(ctx context.Context, url, token string) (io.ReadCloser, int64, error) {
	resp, err := getResp(ctx, url, token)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing HTTP GET request: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, 0, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("error downloading (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	return resp.Body, resp.ContentLength, nil
}

// Download saves the URL content to a local file.
func Download(ctx context.Context, url, filepath string) (retErr error) {
	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	body, _, err := Open(ctx, url, "")
	if err != nil {
		return err
	}
	defer body.Close()

	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("error saving downloaded content to file: %w", err)
	}

	return nil
}
