package api

import (
	"bytes"
	"context"
	"io"
	"strconv"
)

// MediaInfo returns the metadata of an uploaded attachment.
func (c *Client) MediaInfo(ctx context.Context, mediaID int64) (*MediaMeta, error) {
	var out MediaMeta
	_, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("media_id", strconv.FormatInt(mediaID, 10)).
		SetResult(&out).
		Get("/media")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadMedia attaches a file to an already-sent message. The upload
// endpoint is the one non-JSON call in the API: multipart form data.
func (c *Client) UploadMedia(ctx context.Context, messageID int64, fileName string, content io.Reader) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("message_id", strconv.FormatInt(messageID, 10)).
		SetFileReader("file", fileName, content).
		Post("/media/upload")
	return err
}

// DownloadMedia fetches attachment bytes by id.
func (c *Client) DownloadMedia(ctx context.Context, mediaID int64) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("media_id", strconv.FormatInt(mediaID, 10)).
		Get("/media/download")
	if err != nil {
		return nil, err
	}
	return bytes.Clone(resp.Body()), nil
}

// Avatar fetches a user's avatar bytes by avatar id.
func (c *Client) Avatar(ctx context.Context, avatarID string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("avatar_id", avatarID).
		Get("/avatar")
	if err != nil {
		return nil, err
	}
	return bytes.Clone(resp.Body()), nil
}
