package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type LessonFilters struct {
	VolunteerID *int64
	SubjectID   *int64
	Skip        int
	Limit       int
}

func (f LessonFilters) values() url.Values {
	q := url.Values{}
	if f.VolunteerID != nil {
		q.Set("volunteer_id", strconv.FormatInt(*f.VolunteerID, 10))
	}
	if f.SubjectID != nil {
		q.Set("subject_id", strconv.FormatInt(*f.SubjectID, 10))
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// PublishLesson uploads a lesson as a multipart form. When media is nil the
// media_file part is omitted entirely, not sent empty.
func (c *Client) PublishLesson(ctx context.Context, volunteerID, subjectID int64, title, description string, media *MediaFile) (*PublishedLesson, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := map[string]string{
		"volunteer_id": strconv.FormatInt(volunteerID, 10),
		"subject_id":   strconv.FormatInt(subjectID, 10),
		"title":        title,
		"description":  description,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, clientFault(err)
		}
	}

	if media != nil {
		if err := writeMediaPart(form, media); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, clientFault(err)
	}

	var lesson PublishedLesson
	if err := c.doMultipart(ctx, "/published-lessons/", form.FormDataContentType(), &buf, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func writeMediaPart(form *multipart.Writer, media *MediaFile) error {
	file, err := os.Open(media.Path)
	if err != nil {
		return clientFault(err)
	}
	defer file.Close()

	name := media.Name
	if name == "" {
		parts := strings.Split(media.Path, "/")
		name = parts[len(parts)-1]
	}
	contentType := media.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media_file"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return clientFault(err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return clientFault(err)
	}
	return nil
}

func (c *Client) GetPublishedLessons(ctx context.Context, filters LessonFilters) ([]PublishedLesson, error) {
	var lessons []PublishedLesson
	if err := c.do(ctx, http.MethodGet, "/published-lessons/", filters.values(), nil, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (c *Client) GetPublishedLesson(ctx context.Context, id int64) (*PublishedLesson, error) {
	var lesson PublishedLesson
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/published-lessons/%d", id), nil, nil, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (c *Client) UpdatePublishedLesson(ctx context.Context, id, volunteerID int64, patch LessonUpdate) (*PublishedLesson, error) {
	q := url.Values{"volunteer_id": {strconv.FormatInt(volunteerID, 10)}}
	var lesson PublishedLesson
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/published-lessons/%d", id), q, patch, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (c *Client) DeletePublishedLesson(ctx context.Context, id, volunteerID int64) error {
	q := url.Values{"volunteer_id": {strconv.FormatInt(volunteerID, 10)}}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/published-lessons/%d", id), q, nil, nil)
}

// LikePublishedLesson bumps the like counter and returns the new count.
func (c *Client) LikePublishedLesson(ctx context.Context, id int64) (int, error) {
	var out struct {
		LikesCount int `json:"likes_count"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/published-lessons/%d/like", id), nil, nil, &out); err != nil {
		return 0, err
	}
	return out.LikesCount, nil
}
