package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"educaconecta/internal/api"
	"educaconecta/internal/logging"
)

func newTestServer(t *testing.T) (*Store, *httptest.Server) {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(NewServer(store, logging.Discard(), t.TempDir()).Router())
	t.Cleanup(server.Close)
	return store, server
}

func signup(t *testing.T, baseURL, email, name string, role api.UserRole) *api.Client {
	t.Helper()
	client := api.New(baseURL, 5*time.Second)
	token, err := client.Signup(context.Background(), api.SignupRequest{
		Email: email, Password: "secret1", Name: name, Role: role,
	})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	client.SetToken(token.AccessToken)
	return client
}

func TestHealth(t *testing.T) {
	_, server := newTestServer(t)
	client := api.New(server.URL, time.Second)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestSubjectsAreSeeded(t *testing.T) {
	_, server := newTestServer(t)
	client := api.New(server.URL, time.Second)

	subjects, err := client.GetSubjects(context.Background())
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	if len(subjects) == 0 {
		t.Fatal("expected seeded subjects")
	}
	if subjects[0].Name == "" {
		t.Errorf("subject = %+v", subjects[0])
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	_, server := newTestServer(t)
	signup(t, server.URL, "ana@example.com", "Ana", api.RoleLearner)

	client := api.New(server.URL, time.Second)
	_, err := client.Signup(context.Background(), api.SignupRequest{
		Email: "ana@example.com", Password: "secret1", Name: "Ana 2", Role: api.RoleLearner,
	})
	apiErr, ok := err.(*api.Error)
	if !ok {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message != "Email já cadastrado" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestMutationsRequireAuth(t *testing.T) {
	_, server := newTestServer(t)
	client := api.New(server.URL, time.Second) // no token

	_, err := client.CreateForumTopic(context.Background(), api.TopicCreate{
		SubjectID: 1, Title: "t", Content: "c",
	})
	if !api.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	apiErr := err.(*api.Error)
	if apiErr.Message != "Not authenticated" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestTopicViewCountBumpsOnGet(t *testing.T) {
	_, server := newTestServer(t)
	client := signup(t, server.URL, "ana@example.com", "Ana", api.RoleLearner)
	ctx := context.Background()

	topic, err := client.CreateForumTopic(ctx, api.TopicCreate{SubjectID: 1, Title: "Dúvida", Content: "como?"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if topic.ViewsCount != 0 {
		t.Fatalf("fresh topic views = %d", topic.ViewsCount)
	}

	for want := 1; want <= 3; want++ {
		got, err := client.GetForumTopic(ctx, topic.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ViewsCount != want {
			t.Errorf("views after read %d = %d", want, got.ViewsCount)
		}
	}
}

func TestTopicAuthorOnlyMutations(t *testing.T) {
	_, server := newTestServer(t)
	author := signup(t, server.URL, "ana@example.com", "Ana", api.RoleLearner)
	other := signup(t, server.URL, "beto@example.com", "Beto", api.RoleLearner)
	ctx := context.Background()

	topic, err := author.CreateForumTopic(ctx, api.TopicCreate{SubjectID: 1, Title: "Dúvida", Content: "como?"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "hijack"
	if _, err := other.UpdateForumTopic(ctx, topic.ID, 0, api.TopicUpdate{Title: &title}); !api.IsPermissionDenied(err) {
		t.Errorf("update by non-author: got %v, want 403", err)
	}
	if err := other.DeleteForumTopic(ctx, topic.ID, 0); !api.IsPermissionDenied(err) {
		t.Errorf("delete by non-author: got %v, want 403", err)
	}

	if _, err := author.UpdateForumTopic(ctx, topic.ID, 0, api.TopicUpdate{Title: &title}); err != nil {
		t.Errorf("update by author: %v", err)
	}
}

func TestReplyAuthorOnlyMutations(t *testing.T) {
	_, server := newTestServer(t)
	topicAuthor := signup(t, server.URL, "ana@example.com", "Ana", api.RoleLearner)
	replyAuthor := signup(t, server.URL, "beto@example.com", "Beto", api.RoleVolunteer)
	ctx := context.Background()

	topic, err := topicAuthor.CreateForumTopic(ctx, api.TopicCreate{SubjectID: 1, Title: "Dúvida", Content: "como?"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	reply, err := replyAuthor.CreateForumReply(ctx, api.ReplyCreate{TopicID: topic.ID, Content: "assim"})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	// Topic ownership does not extend to replies written by others.
	content := "hijack"
	if _, err := topicAuthor.UpdateForumReply(ctx, reply.ID, 0, api.ReplyUpdate{Content: &content}); !api.IsPermissionDenied(err) {
		t.Errorf("edit by topic author: got %v, want 403", err)
	}
	if err := topicAuthor.DeleteForumReply(ctx, reply.ID, 0); !api.IsPermissionDenied(err) {
		t.Errorf("delete by topic author: got %v, want 403", err)
	}

	updated, err := replyAuthor.UpdateForumReply(ctx, reply.ID, 0, api.ReplyUpdate{Content: &content})
	if err != nil {
		t.Fatalf("edit by reply author: %v", err)
	}
	if updated.Content != content {
		t.Errorf("content = %q", updated.Content)
	}
	if err := replyAuthor.DeleteForumReply(ctx, reply.ID, 0); err != nil {
		t.Fatalf("delete by reply author: %v", err)
	}
}

func TestRepliesCountMaintainedWithFloor(t *testing.T) {
	store, server := newTestServer(t)
	client := signup(t, server.URL, "ana@example.com", "Ana", api.RoleLearner)
	ctx := context.Background()

	topic, err := client.CreateForumTopic(ctx, api.TopicCreate{SubjectID: 1, Title: "Dúvida", Content: "como?"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	reply, err := client.CreateForumReply(ctx, api.ReplyCreate{TopicID: topic.ID, Content: "assim"})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	after, err := store.getTopic(topic.ID)
	if err != nil {
		t.Fatalf("get topic: %v", err)
	}
	if after.RepliesCount != 1 {
		t.Errorf("replies_count = %d, want 1", after.RepliesCount)
	}

	if err := client.DeleteForumReply(ctx, reply.ID, 0); err != nil {
		t.Fatalf("delete reply: %v", err)
	}
	after, _ = store.getTopic(topic.ID)
	if after.RepliesCount != 0 {
		t.Errorf("replies_count = %d, want 0", after.RepliesCount)
	}

	// Decrement with the counter already at zero must clamp, not go negative.
	if err := store.deleteReply(reply.ID, topic.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	after, _ = store.getTopic(topic.ID)
	if after.RepliesCount != 0 {
		t.Errorf("replies_count clamped = %d, want 0", after.RepliesCount)
	}
}

func TestAcceptReplyResolvesTopic(t *testing.T) {
	_, server := newTestServer(t)
	author := signup(t, server.URL, "ana@example.com", "Ana", api.RoleLearner)
	helper := signup(t, server.URL, "beto@example.com", "Beto", api.RoleVolunteer)
	ctx := context.Background()

	topic, err := author.CreateForumTopic(ctx, api.TopicCreate{SubjectID: 1, Title: "Dúvida", Content: "como?"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	reply, err := helper.CreateForumReply(ctx, api.ReplyCreate{TopicID: topic.ID, Content: "assim"})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	if _, err := helper.AcceptForumReply(ctx, reply.ID, 0); !api.IsPermissionDenied(err) {
		t.Fatalf("accept by non-topic-author: got %v, want 403", err)
	}

	accepted, err := author.AcceptForumReply(ctx, reply.ID, 0)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !accepted.IsAccepted {
		t.Error("reply not marked accepted")
	}
	resolved, _ := author.GetForumTopic(ctx, topic.ID)
	if !resolved.IsResolved {
		t.Error("topic not resolved after accept")
	}
}

func TestPublishLessonRequiresVolunteer(t *testing.T) {
	_, server := newTestServer(t)
	learner := signup(t, server.URL, "ana@example.com", "Ana", api.RoleLearner)
	volunteer := signup(t, server.URL, "vito@example.com", "Vito", api.RoleVolunteer)
	ctx := context.Background()

	if _, err := learner.PublishLesson(ctx, 0, 1, "Aula", "", nil); !api.IsPermissionDenied(err) {
		t.Fatalf("learner publish: got %v, want 403", err)
	}

	lesson, err := volunteer.PublishLesson(ctx, 0, 1, "Frações na prática", "passo a passo", nil)
	if err != nil {
		t.Fatalf("volunteer publish: %v", err)
	}
	if lesson.Title != "Frações na prática" || lesson.MediaURL != "" {
		t.Errorf("lesson = %+v", lesson)
	}

	likes, err := volunteer.LikePublishedLesson(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if likes != 1 {
		t.Errorf("likes = %d, want 1", likes)
	}
}

func TestNewsLifecycle(t *testing.T) {
	_, server := newTestServer(t)
	client := signup(t, server.URL, "ana@example.com", "Ana", api.RoleLearner)
	ctx := context.Background()

	item, err := client.CreateNews(ctx, api.NewsCreate{Title: "Mutirão de reforço", Content: "sábado às 9h", NewsType: api.NewsTypeEvent})
	if err != nil {
		t.Fatalf("create news: %v", err)
	}

	got, err := client.GetNewsItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get news: %v", err)
	}
	if got.ViewsCount != 1 {
		t.Errorf("views = %d, want 1 after first read", got.ViewsCount)
	}

	if err := client.DeleteNews(ctx, item.ID); err != nil {
		t.Fatalf("delete news: %v", err)
	}
	if _, err := client.GetNewsItem(ctx, item.ID); !api.IsNotFound(err) {
		t.Errorf("expected 404 after delete, got %v", err)
	}
}
