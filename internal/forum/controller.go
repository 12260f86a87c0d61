// Package forum holds the client-side forum state: the topic list, the open
// topic with its replies, and the optimistic counters kept in sync with the
// server. Local counter deltas are provisional; any authoritative fetch
// overwrites them unconditionally.
package forum

import (
	"context"
	"errors"
	"strings"
	"sync"

	"educaconecta/internal/api"
	"educaconecta/internal/logging"
	"educaconecta/internal/session"
)

// Mode is the forum view mode.
type Mode int

const (
	ModeTopicList Mode = iota
	ModeTopicDetail
)

var (
	// ErrNotSignedIn is returned by mutations that need an authenticated user.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrNotAuthor is the advisory client-side gate; the server re-enforces
	// authorship on every mutation regardless.
	ErrNotAuthor = errors.New("only the author can do that")
	// ErrNoTopic is returned by detail operations outside detail mode.
	ErrNoTopic = errors.New("no topic is open")
)

// ValidationError is a pre-flight failure, reported before any API call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Controller drives the TopicList <-> TopicDetail state machine. Caches are
// screen-scoped: they hold the last successful fetch and nothing stronger.
type Controller struct {
	client  *api.Client
	session *session.Manager
	log     *logging.Logger

	mu          sync.Mutex
	mode        Mode
	lastFilters api.TopicFilters
	topics      []api.ForumTopic
	subjects    []api.Subject
	current     *api.ForumTopic
	replies     []api.ForumReply
}

func NewController(client *api.Client, sess *session.Manager, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.Discard()
	}
	return &Controller{client: client, session: sess, log: log, mode: ModeTopicList}
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Topics returns a copy of the cached topic list, newest-first.
func (c *Controller) Topics() []api.ForumTopic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.ForumTopic(nil), c.topics...)
}

func (c *Controller) Subjects() []api.Subject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Subject(nil), c.subjects...)
}

// Current returns a copy of the open topic, or nil in list mode.
func (c *Controller) Current() *api.ForumTopic {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	topic := *c.current
	return &topic
}

func (c *Controller) Replies() []api.ForumReply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.ForumReply(nil), c.replies...)
}

// SubjectName resolves a subject id against the cached reference data.
func (c *Controller) SubjectName(id int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.subjects {
		if s.ID == id {
			return s.Name
		}
	}
	return ""
}

// LoadTopics fetches topics and subjects concurrently and joins both before
// touching the caches. On any failure the prior caches stay untouched and
// the error is surfaced; there is no retry.
func (c *Controller) LoadTopics(ctx context.Context, filters api.TopicFilters) error {
	var (
		wg          sync.WaitGroup
		topics      []api.ForumTopic
		subjects    []api.Subject
		topicsErr   error
		subjectsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		topics, topicsErr = c.client.GetForumTopics(ctx, filters)
	}()
	go func() {
		defer wg.Done()
		subjects, subjectsErr = c.client.GetSubjects(ctx)
	}()
	wg.Wait()

	if topicsErr != nil {
		return topicsErr
	}
	if subjectsErr != nil {
		return subjectsErr
	}

	c.mu.Lock()
	c.lastFilters = filters
	c.topics = topics
	c.subjects = subjects
	c.mu.Unlock()
	return nil
}

// OpenTopic transitions to detail mode and fetches the topic's replies. A
// failed fetch leaves the detail open with no replies; the caller decides
// how to surface the error.
func (c *Controller) OpenTopic(ctx context.Context, topic api.ForumTopic) error {
	c.mu.Lock()
	c.mode = ModeTopicDetail
	t := topic
	c.current = &t
	c.replies = nil
	c.mu.Unlock()

	replies, err := c.client.GetForumReplies(ctx, topic.ID, 0, 0)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.current != nil && c.current.ID == topic.ID {
		c.replies = replies
	}
	c.mu.Unlock()
	return nil
}

// CloseTopic returns to the list and reloads it so counters drifted by
// optimistic updates get reconciled. A failed background reload is logged
// and swallowed; it never blocks navigation.
func (c *Controller) CloseTopic(ctx context.Context) {
	c.mu.Lock()
	c.mode = ModeTopicList
	c.current = nil
	c.replies = nil
	filters := c.lastFilters
	c.mu.Unlock()

	if err := c.LoadTopics(ctx, filters); err != nil {
		c.log.Warnf("background topic reload failed: %v", err)
	}
}

// CreateTopic validates locally, creates the topic and prepends it to the
// cache (newest-first).
func (c *Controller) CreateTopic(ctx context.Context, title, content string, subjectID int64) (*api.ForumTopic, error) {
	user := c.session.CurrentUser()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, &ValidationError{Reason: "title must not be empty"}
	}
	if content == "" {
		return nil, &ValidationError{Reason: "content must not be empty"}
	}

	topic, err := c.client.CreateForumTopic(ctx, api.TopicCreate{
		SubjectID: subjectID,
		UserID:    user.ID,
		Title:     title,
		Content:   content,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.topics = append([]api.ForumTopic{*topic}, c.topics...)
	c.mu.Unlock()
	return topic, nil
}

// CanEditTopic is the advisory author gate for the UI. It is a rendering
// affordance, not a security boundary.
func (c *Controller) CanEditTopic(topic api.ForumTopic) bool {
	user := c.session.CurrentUser()
	return user != nil && user.ID == topic.UserID
}

// CanEditReply gates reply edit/delete the same way.
func (c *Controller) CanEditReply(reply api.ForumReply) bool {
	user := c.session.CurrentUser()
	return user != nil && user.ID == reply.UserID
}

// EditTopic patches the open topic. The server's author check remains the
// authority; a 403 from it surfaces as a permission error.
func (c *Controller) EditTopic(ctx context.Context, patch api.TopicUpdate) (*api.ForumTopic, error) {
	user := c.session.CurrentUser()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return nil, ErrNoTopic
	}
	topic := *c.current
	c.mu.Unlock()

	if topic.UserID != user.ID {
		return nil, ErrNotAuthor
	}

	updated, err := c.client.UpdateForumTopic(ctx, topic.ID, user.ID, patch)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.current != nil && c.current.ID == updated.ID {
		c.current = updated
	}
	c.replaceTopicLocked(*updated)
	c.mu.Unlock()
	return updated, nil
}

// DeleteTopic removes the open topic (replies cascade server-side) and
// returns to the list.
func (c *Controller) DeleteTopic(ctx context.Context) error {
	user := c.session.CurrentUser()
	if user == nil {
		return ErrNotSignedIn
	}
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return ErrNoTopic
	}
	topic := *c.current
	c.mu.Unlock()

	if topic.UserID != user.ID {
		return ErrNotAuthor
	}
	if err := c.client.DeleteForumTopic(ctx, topic.ID, user.ID); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.topics[:0]
	for _, t := range c.topics {
		if t.ID != topic.ID {
			kept = append(kept, t)
		}
	}
	c.topics = kept
	c.mu.Unlock()

	c.CloseTopic(ctx)
	return nil
}

// CreateReply posts a reply to the open topic, appends it to the cache and
// optimistically bumps the topic's reply counter by one.
func (c *Controller) CreateReply(ctx context.Context, content string) (*api.ForumReply, error) {
	user := c.session.CurrentUser()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Reason: "content must not be empty"}
	}
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return nil, ErrNoTopic
	}
	topicID := c.current.ID
	c.mu.Unlock()

	reply, err := c.client.CreateForumReply(ctx, api.ReplyCreate{
		TopicID: topicID,
		UserID:  user.ID,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.current != nil && c.current.ID == topicID {
		c.replies = append(c.replies, *reply)
		c.current.RepliesCount++
		c.replaceTopicLocked(*c.current)
	}
	c.mu.Unlock()
	return reply, nil
}

// EditReply patches a reply; author-only, advisory check first, server
// authoritative.
func (c *Controller) EditReply(ctx context.Context, reply api.ForumReply, patch api.ReplyUpdate) (*api.ForumReply, error) {
	user := c.session.CurrentUser()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	if reply.UserID != user.ID {
		return nil, ErrNotAuthor
	}

	updated, err := c.client.UpdateForumReply(ctx, reply.ID, user.ID, patch)
	if err != nil {
		return nil, err
	}
	c.replaceReply(*updated)
	return updated, nil
}

// DeleteReply removes a reply and decrements the open topic's reply
// counter, floored at zero.
func (c *Controller) DeleteReply(ctx context.Context, reply api.ForumReply) error {
	user := c.session.CurrentUser()
	if user == nil {
		return ErrNotSignedIn
	}
	if reply.UserID != user.ID {
		return ErrNotAuthor
	}
	if err := c.client.DeleteForumReply(ctx, reply.ID, user.ID); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.replies[:0]
	for _, r := range c.replies {
		if r.ID != reply.ID {
			kept = append(kept, r)
		}
	}
	c.replies = kept
	if c.current != nil && c.current.ID == reply.TopicID {
		if c.current.RepliesCount > 0 {
			c.current.RepliesCount--
		}
		c.replaceTopicLocked(*c.current)
	}
	c.mu.Unlock()
	return nil
}

// LikeReply asks the server to bump the like counter. No optimistic local
// update happens; the server's returned entity replaces the local entry, so
// the count never double-drifts.
func (c *Controller) LikeReply(ctx context.Context, reply api.ForumReply) (*api.ForumReply, error) {
	updated, err := c.client.LikeForumReply(ctx, reply.ID)
	if err != nil {
		return nil, err
	}
	c.replaceReply(*updated)
	return updated, nil
}

// AcceptReply marks a reply as the accepted answer. Only the open topic's
// author may accept (advisory; the server re-checks).
func (c *Controller) AcceptReply(ctx context.Context, reply api.ForumReply) (*api.ForumReply, error) {
	user := c.session.CurrentUser()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	c.mu.Lock()
	current := c.current
	var topicAuthor int64
	if current != nil {
		topicAuthor = current.UserID
	}
	c.mu.Unlock()
	if current == nil {
		return nil, ErrNoTopic
	}
	if topicAuthor != user.ID {
		return nil, ErrNotAuthor
	}

	updated, err := c.client.AcceptForumReply(ctx, reply.ID, user.ID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.current != nil && c.current.ID == updated.TopicID {
		c.current.IsResolved = true
		c.replaceTopicLocked(*c.current)
	}
	c.mu.Unlock()
	c.replaceReply(*updated)
	return updated, nil
}

// replaceTopicLocked mirrors a changed topic into the list cache. Caller
// holds the mutex.
func (c *Controller) replaceTopicLocked(topic api.ForumTopic) {
	for i := range c.topics {
		if c.topics[i].ID == topic.ID {
			c.topics[i] = topic
			return
		}
	}
}

func (c *Controller) replaceReply(reply api.ForumReply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.replies {
		if c.replies[i].ID == reply.ID {
			c.replies[i] = reply
			return
		}
	}
}
