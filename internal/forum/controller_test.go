package forum

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"educaconecta/internal/api"
	"educaconecta/internal/devserver"
	"educaconecta/internal/logging"
	"educaconecta/internal/session"
)

func startBackend(t *testing.T) string {
	t.Helper()
	store, err := devserver.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(devserver.NewServer(store, logging.Discard(), t.TempDir()).Router())
	t.Cleanup(server.Close)
	return server.URL
}

// signedInController signs a fresh user up against the backend and wraps it
// in a controller. Each call gets its own client so tokens stay separate.
func signedInController(t *testing.T, baseURL, email, name string) *Controller {
	t.Helper()
	client := api.New(baseURL, 5*time.Second)
	sess := session.NewManager(client, session.NewFileTokenStore(t.TempDir()))
	if _, err := sess.Signup(context.Background(), email, "secret1", name, api.RoleLearner); err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return NewController(client, sess, nil)
}

func mustCreateTopic(t *testing.T, c *Controller, title string) *api.ForumTopic {
	t.Helper()
	topic, err := c.CreateTopic(context.Background(), title, "como resolvo isso?", 1)
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	return topic
}

func TestCreateTopicPrependsToList(t *testing.T) {
	ctx := context.Background()
	c := signedInController(t, startBackend(t), "ana@example.com", "Ana")

	if err := c.LoadTopics(ctx, api.TopicFilters{}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Topics()) != 0 {
		t.Fatalf("expected empty forum, got %d topics", len(c.Topics()))
	}

	mustCreateTopic(t, c, "Primeira dúvida")
	second := mustCreateTopic(t, c, "Segunda dúvida")

	topics := c.Topics()
	if len(topics) != 2 {
		t.Fatalf("len = %d, want 2", len(topics))
	}
	if topics[0].ID != second.ID {
		t.Errorf("newest topic should be first, got %q", topics[0].Title)
	}
	if topics[0].AuthorName != "Ana" {
		t.Errorf("author = %q", topics[0].AuthorName)
	}
}

func TestCreateTopicValidation(t *testing.T) {
	c := signedInController(t, startBackend(t), "ana@example.com", "Ana")

	_, err := c.CreateTopic(context.Background(), "   ", "corpo", 1)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected *ValidationError for blank title, got %v", err)
	}
	if len(c.Topics()) != 0 {
		t.Error("nothing should be cached after a rejected create")
	}
}

func TestCreateTopicRequiresSignIn(t *testing.T) {
	client := api.New(startBackend(t), 5*time.Second)
	sess := session.NewManager(client, session.NewFileTokenStore(t.TempDir()))
	c := NewController(client, sess, nil)

	_, err := c.CreateTopic(context.Background(), "título", "corpo", 1)
	if !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestOpenAndCloseTopicSwitchesMode(t *testing.T) {
	ctx := context.Background()
	c := signedInController(t, startBackend(t), "ana@example.com", "Ana")
	topic := mustCreateTopic(t, c, "Dúvida de frações")

	if c.Mode() != ModeTopicList {
		t.Fatalf("mode = %v, want list", c.Mode())
	}
	if err := c.OpenTopic(ctx, *topic); err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.Mode() != ModeTopicDetail {
		t.Errorf("mode = %v, want detail", c.Mode())
	}
	if current := c.Current(); current == nil || current.ID != topic.ID {
		t.Errorf("current = %+v", c.Current())
	}

	c.CloseTopic(ctx)
	if c.Mode() != ModeTopicList {
		t.Errorf("mode after close = %v, want list", c.Mode())
	}
	if c.Current() != nil {
		t.Error("current topic should be cleared on close")
	}
}

func TestReplyCountFollowsCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	c := signedInController(t, startBackend(t), "ana@example.com", "Ana")
	topic := mustCreateTopic(t, c, "Dúvida")
	if err := c.OpenTopic(ctx, *topic); err != nil {
		t.Fatalf("open: %v", err)
	}

	reply, err := c.CreateReply(ctx, "tenta assim")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if got := c.Current().RepliesCount; got != 1 {
		t.Errorf("replies_count after create = %d, want 1", got)
	}
	if len(c.Replies()) != 1 {
		t.Errorf("cached replies = %d, want 1", len(c.Replies()))
	}

	if err := c.DeleteReply(ctx, *reply); err != nil {
		t.Fatalf("delete reply: %v", err)
	}
	if got := c.Current().RepliesCount; got != 0 {
		t.Errorf("replies_count after delete = %d, want 0", got)
	}

	// Deleting when the counter is already zero must not go negative.
	if got := c.Current().RepliesCount; got < 0 {
		t.Errorf("replies_count went negative: %d", got)
	}
}

func TestLikeReplyTakesServerCount(t *testing.T) {
	ctx := context.Background()
	c := signedInController(t, startBackend(t), "ana@example.com", "Ana")
	topic := mustCreateTopic(t, c, "Dúvida")
	if err := c.OpenTopic(ctx, *topic); err != nil {
		t.Fatalf("open: %v", err)
	}
	reply, err := c.CreateReply(ctx, "resposta")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	liked, err := c.LikeReply(ctx, *reply)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if liked.LikesCount != 1 {
		t.Errorf("likes = %d, want 1 (no local double count)", liked.LikesCount)
	}
	if cached := c.Replies()[0].LikesCount; cached != 1 {
		t.Errorf("cached likes = %d, want 1", cached)
	}

	// Likes are unconditional; a second like counts again.
	liked, err = c.LikeReply(ctx, *liked)
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if liked.LikesCount != 2 {
		t.Errorf("likes = %d, want 2", liked.LikesCount)
	}
}

func TestAcceptReplyResolvesTopicForAuthorOnly(t *testing.T) {
	ctx := context.Background()
	baseURL := startBackend(t)
	author := signedInController(t, baseURL, "ana@example.com", "Ana")
	helper := signedInController(t, baseURL, "beto@example.com", "Beto")

	topic := mustCreateTopic(t, author, "Como somar frações?")

	if err := helper.LoadTopics(ctx, api.TopicFilters{}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := helper.OpenTopic(ctx, helper.Topics()[0]); err != nil {
		t.Fatalf("open: %v", err)
	}
	reply, err := helper.CreateReply(ctx, "iguala os denominadores")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	// The helper wrote the reply but only the topic author may accept it.
	if _, err := helper.AcceptReply(ctx, *reply); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor for non-author accept, got %v", err)
	}

	if err := author.OpenTopic(ctx, *topic); err != nil {
		t.Fatalf("author open: %v", err)
	}
	accepted, err := author.AcceptReply(ctx, author.Replies()[0])
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !accepted.IsAccepted {
		t.Error("reply should be marked accepted")
	}
	if !author.Current().IsResolved {
		t.Error("topic should be resolved after accepting a reply")
	}
}

func TestReplyAuthorGatingAgainstTopicAuthor(t *testing.T) {
	ctx := context.Background()
	baseURL := startBackend(t)
	author := signedInController(t, baseURL, "ana@example.com", "Ana")
	helper := signedInController(t, baseURL, "beto@example.com", "Beto")

	topic := mustCreateTopic(t, author, "Como somar frações?")

	if err := helper.LoadTopics(ctx, api.TopicFilters{}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := helper.OpenTopic(ctx, helper.Topics()[0]); err != nil {
		t.Fatalf("open: %v", err)
	}
	reply, err := helper.CreateReply(ctx, "iguala os denominadores")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	// Owning the topic grants no rights over someone else's reply.
	if err := author.OpenTopic(ctx, *topic); err != nil {
		t.Fatalf("author open: %v", err)
	}
	if author.CanEditReply(*reply) {
		t.Error("topic author should not pass the reply edit gate")
	}
	content := "tentativa de edição"
	if _, err := author.EditReply(ctx, *reply, api.ReplyUpdate{Content: &content}); !errors.Is(err, ErrNotAuthor) {
		t.Errorf("edit by topic author: got %v, want ErrNotAuthor", err)
	}
	if err := author.DeleteReply(ctx, *reply); !errors.Is(err, ErrNotAuthor) {
		t.Errorf("delete by topic author: got %v, want ErrNotAuthor", err)
	}

	// Bypassing the advisory gate still hits the server's author check.
	if _, err := author.client.UpdateForumReply(ctx, reply.ID, 0, api.ReplyUpdate{Content: &content}); !api.IsPermissionDenied(err) {
		t.Errorf("direct edit by topic author: got %v, want 403", err)
	}
	if err := author.client.DeleteForumReply(ctx, reply.ID, 0); !api.IsPermissionDenied(err) {
		t.Errorf("direct delete by topic author: got %v, want 403", err)
	}

	// The reply's author keeps full rights over it.
	edited, err := helper.EditReply(ctx, *reply, api.ReplyUpdate{Content: &content})
	if err != nil {
		t.Fatalf("edit by reply author: %v", err)
	}
	if edited.Content != content {
		t.Errorf("content = %q", edited.Content)
	}
}

func TestEditTopicAdvisoryAuthorCheck(t *testing.T) {
	ctx := context.Background()
	baseURL := startBackend(t)
	author := signedInController(t, baseURL, "ana@example.com", "Ana")
	other := signedInController(t, baseURL, "beto@example.com", "Beto")

	topic := mustCreateTopic(t, author, "Título original")

	if err := other.LoadTopics(ctx, api.TopicFilters{}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := other.OpenTopic(ctx, other.Topics()[0]); err != nil {
		t.Fatalf("open: %v", err)
	}
	title := "tentativa de edição"
	if _, err := other.EditTopic(ctx, api.TopicUpdate{Title: &title}); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor, got %v", err)
	}

	if err := author.OpenTopic(ctx, *topic); err != nil {
		t.Fatalf("author open: %v", err)
	}
	newTitle := "Título revisado"
	updated, err := author.EditTopic(ctx, api.TopicUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if updated.Title != newTitle {
		t.Errorf("title = %q", updated.Title)
	}
	if author.Current().Title != newTitle {
		t.Errorf("cached title = %q", author.Current().Title)
	}

	// A fresh load must show the edit too; the cache update above is not
	// the only witness.
	if err := author.LoadTopics(ctx, api.TopicFilters{}); err != nil {
		t.Fatalf("reload: %v", err)
	}
	var reloaded *api.ForumTopic
	for _, cached := range author.Topics() {
		if cached.ID == topic.ID {
			fresh := cached
			reloaded = &fresh
		}
	}
	if reloaded == nil {
		t.Fatal("edited topic missing after reload")
	}
	if reloaded.Title != newTitle {
		t.Errorf("reloaded title = %q, want %q", reloaded.Title, newTitle)
	}
}

func TestDeleteTopicReturnsToList(t *testing.T) {
	ctx := context.Background()
	c := signedInController(t, startBackend(t), "ana@example.com", "Ana")
	topic := mustCreateTopic(t, c, "Descartável")
	if err := c.OpenTopic(ctx, *topic); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := c.DeleteTopic(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if c.Mode() != ModeTopicList {
		t.Errorf("mode = %v, want list", c.Mode())
	}
	for _, cached := range c.Topics() {
		if cached.ID == topic.ID {
			t.Error("deleted topic still cached")
		}
	}
}

func TestLoadTopicsKeepsCacheOnFailure(t *testing.T) {
	ctx := context.Background()
	store, err := devserver.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	server := httptest.NewServer(devserver.NewServer(store, logging.Discard(), t.TempDir()).Router())

	c := signedInController(t, server.URL, "ana@example.com", "Ana")
	mustCreateTopic(t, c, "Sobrevivente")
	if err := c.LoadTopics(ctx, api.TopicFilters{}); err != nil {
		t.Fatalf("load: %v", err)
	}

	server.Close()

	if err := c.LoadTopics(ctx, api.TopicFilters{}); err == nil {
		t.Fatal("expected a load failure against a dead backend")
	}
	if !api.IsNetworkError(c.LoadTopics(ctx, api.TopicFilters{})) {
		t.Error("failure should surface as a network error")
	}

	topics := c.Topics()
	if len(topics) != 1 || topics[0].Title != "Sobrevivente" {
		t.Errorf("cache lost on failed reload: %+v", topics)
	}
}
