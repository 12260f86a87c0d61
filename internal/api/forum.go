package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// TopicFilters narrows a topic listing. Nil/zero fields are omitted from the
// query string entirely, never sent as null.
type TopicFilters struct {
	SubjectID  *int64
	UserID     *int64
	IsResolved *bool
	Search     string
	Skip       int
	Limit      int
}

func (f TopicFilters) values() url.Values {
	q := url.Values{}
	if f.SubjectID != nil {
		q.Set("subject_id", strconv.FormatInt(*f.SubjectID, 10))
	}
	if f.UserID != nil {
		q.Set("user_id", strconv.FormatInt(*f.UserID, 10))
	}
	if f.IsResolved != nil {
		q.Set("is_resolved", strconv.FormatBool(*f.IsResolved))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// GetForumTopics lists topics newest-first.
func (c *Client) GetForumTopics(ctx context.Context, filters TopicFilters) ([]ForumTopic, error) {
	var topics []ForumTopic
	if err := c.do(ctx, http.MethodGet, "/forum/topics", filters.values(), nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// GetForumTopic fetches one topic; the server bumps its view counter.
func (c *Client) GetForumTopic(ctx context.Context, id int64) (*ForumTopic, error) {
	var topic ForumTopic
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/forum/topics/%d", id), nil, nil, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (c *Client) CreateForumTopic(ctx context.Context, data TopicCreate) (*ForumTopic, error) {
	var topic ForumTopic
	if err := c.do(ctx, http.MethodPost, "/forum/topics", nil, data, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// UpdateForumTopic patches a topic. requestingUserID travels as a query
// parameter for the server's author check; the server is the authority.
func (c *Client) UpdateForumTopic(ctx context.Context, id, requestingUserID int64, patch TopicUpdate) (*ForumTopic, error) {
	q := url.Values{"user_id": {strconv.FormatInt(requestingUserID, 10)}}
	var topic ForumTopic
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/forum/topics/%d", id), q, patch, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// DeleteForumTopic removes a topic; the server cascades to its replies.
func (c *Client) DeleteForumTopic(ctx context.Context, id, requestingUserID int64) error {
	q := url.Values{"user_id": {strconv.FormatInt(requestingUserID, 10)}}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/forum/topics/%d", id), q, nil, nil)
}

// GetForumReplies lists a topic's replies oldest-first. skip/limit <= 0 are
// omitted and left to the server's defaults.
func (c *Client) GetForumReplies(ctx context.Context, topicID int64, skip, limit int) ([]ForumReply, error) {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var replies []ForumReply
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/forum/topics/%d/replies", topicID), q, nil, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

func (c *Client) CreateForumReply(ctx context.Context, data ReplyCreate) (*ForumReply, error) {
	var reply ForumReply
	if err := c.do(ctx, http.MethodPost, "/forum/replies", nil, data, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) UpdateForumReply(ctx context.Context, id, userID int64, patch ReplyUpdate) (*ForumReply, error) {
	q := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	var reply ForumReply
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/forum/replies/%d", id), q, patch, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) DeleteForumReply(ctx context.Context, id, userID int64) error {
	q := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/forum/replies/%d", id), q, nil, nil)
}

// LikeForumReply increments a reply's like counter. There is no
// idempotence guard; repeated calls increment repeatedly.
func (c *Client) LikeForumReply(ctx context.Context, id int64) (*ForumReply, error) {
	var reply ForumReply
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/forum/replies/%d/like", id), nil, nil, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// AcceptForumReply marks a reply as the accepted answer. Only the topic
// author may accept; userID travels for the server-side check.
func (c *Client) AcceptForumReply(ctx context.Context, id, userID int64) (*ForumReply, error) {
	q := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	var reply ForumReply
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/forum/replies/%d/accept", id), q, nil, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
