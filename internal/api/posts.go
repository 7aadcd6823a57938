package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/publiflow/publiflow-client/internal/model"
)

// feedParams are the query parameters of the public feed endpoint.
type feedParams struct {
	Page  int    `url:"page"`
	Limit int    `url:"limit"`
	Query string `url:"q"`
}

type feedResponse struct {
	Data []model.Post   `json:"data"`
	Meta model.PageMeta `json:"meta"`
}

// Feed returns one page of the public post feed, optionally filtered by q.
func (c *Client) Feed(ctx context.Context, page, limit int, q string) (model.Page[model.Post], error) {
	var out feedResponse
	err := c.getJSON(ctx, "/posts/feed", feedParams{Page: page, Limit: limit, Query: q}, &out)
	if err != nil {
		return model.Page[model.Post]{}, err
	}
	return model.Page[model.Post]{Items: out.Data, Meta: out.Meta}, nil
}

// Posts returns the full unpaginated post list (admin only).
func (c *Client) Posts(ctx context.Context) ([]model.Post, error) {
	var out []model.Post
	err := c.getJSON(ctx, "/posts", nil, &out)
	return out, err
}

// Post returns a single post by id.
func (c *Client) Post(ctx context.Context, id int64) (model.Post, error) {
	var out model.Post
	err := c.getJSON(ctx, fmt.Sprintf("/posts/%d", id), nil, &out)
	return out, err
}

// Upload is an optional image attached to a post mutation.
type Upload struct {
	Name    string
	Content []byte
}

// PostInput is the multipart payload of post create/update.
type PostInput struct {
	Title       string
	Description string
	Visible     bool
	Image       *Upload
}

// CreatePost creates a post via a multipart body.
func (c *Client) CreatePost(ctx context.Context, in PostInput) (model.Post, error) {
	var out model.Post
	err := c.sendPostForm(ctx, http.MethodPost, "/posts", in, &out)
	return out, err
}

// UpdatePost updates a post via a multipart body.
func (c *Client) UpdatePost(ctx context.Context, id int64, in PostInput) (model.Post, error) {
	var out model.Post
	err := c.sendPostForm(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), in, &out)
	return out, err
}

// DeletePost removes a post by id.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.deleteJSON(ctx, fmt.Sprintf("/posts/%d", id))
}

func (c *Client) sendPostForm(ctx context.Context, method, path string, in PostInput, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("title", in.Title); err != nil {
		return err
	}
	if err := w.WriteField("description", in.Description); err != nil {
		return err
	}
	if err := w.WriteField("visible", strconv.FormatBool(in.Visible)); err != nil {
		return err
	}
	if in.Image != nil {
		fw, err := w.CreateFormFile("image", in.Image.Name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(in.Image.Content); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.do(ctx, method, path, nil, &buf, w.FormDataContentType(), out)
}
