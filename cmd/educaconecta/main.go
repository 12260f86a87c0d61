// Command educaconecta is the terminal client for the EducaConecta
// volunteer tutoring platform. Run it with no arguments for the interactive
// interface, or with a subcommand for one-shot use.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"educaconecta/internal/api"
	"educaconecta/internal/config"
	"educaconecta/internal/forum"
	"educaconecta/internal/logging"
	"educaconecta/internal/session"
	"educaconecta/internal/tui"
)

func usage() {
	fmt.Println(`Usage: educaconecta [command]

With no command the interactive interface starts.

Account:
  signup <name> <email> <password> <learner|volunteer>
  login <email> <password>
  logout
  whoami

Forum:
  subjects
  topics [-subject id] [-search text] [-unresolved] [-mine]
  topic <id>
  post -subject <id> -title <title> -content <text>
  reply <topic-id> <text>
  like <reply-id>

Content:
  news
  partners
  lessons [-subject id]
  publish -subject <id> -title <title> [-desc text] [-media path]

Other:
  tui
  health`)
}

// app holds everything a subcommand needs.
type app struct {
	cfg    config.Config
	client *api.Client
	sess   *session.Manager
	forum  *forum.Controller
	log    *logging.Logger
}

func newApp() *app {
	cfg := config.Load()

	log, err := logging.New(filepath.Join(cfg.DataDir, "client.log"))
	if err != nil {
		log = logging.Discard()
	}

	client := api.New(cfg.APIBaseURL, cfg.Timeout)
	sess := session.NewManager(client, session.NewFileTokenStore(cfg.DataDir))
	if err := sess.Restore(); err != nil {
		log.Warnf("session restore: %v", err)
	}

	return &app{
		cfg:    cfg,
		client: client,
		sess:   sess,
		forum:  forum.NewController(client, sess, log),
		log:    log,
	}
}

func main() {
	a := newApp()
	defer a.log.Close()

	if len(os.Args) < 2 {
		if err := tui.Run(a.client, a.sess, a.forum); err != nil {
			fail(err)
		}
		return
	}

	ctx := context.Background()
	args := os.Args[2:]

	var err error
	switch os.Args[1] {
	case "signup":
		err = a.signup(ctx, args)
	case "login":
		err = a.login(ctx, args)
	case "logout":
		err = a.logout()
	case "whoami":
		err = a.whoami()
	case "subjects":
		err = a.subjects(ctx)
	case "topics":
		err = a.topics(ctx, args)
	case "topic":
		err = a.topic(ctx, args)
	case "post":
		err = a.post(ctx, args)
	case "reply":
		err = a.reply(ctx, args)
	case "like":
		err = a.like(ctx, args)
	case "news":
		err = a.news(ctx)
	case "partners":
		err = a.partners(ctx)
	case "lessons":
		err = a.lessons(ctx, args)
	case "publish":
		err = a.publish(ctx, args)
	case "tui":
		err = tui.Run(a.client, a.sess, a.forum)
	case "health":
		err = a.client.Health(ctx)
		if err == nil {
			fmt.Println("ok")
		}
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		fmt.Fprintln(os.Stderr, apiErr.Message)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

// --- account ---

func (a *app) signup(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: signup <name> <email> <password> <learner|volunteer>")
	}
	user, err := a.sess.Signup(ctx, args[1], args[2], args[0], api.UserRole(args[3]))
	if err != nil {
		return err
	}
	fmt.Printf("welcome, %s (account #%d, %s)\n", user.Name, user.ID, user.Role)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	user, err := a.sess.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", user.Name)
	return nil
}

func (a *app) logout() error {
	if err := a.sess.Logout(); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

func (a *app) whoami() error {
	user := a.sess.CurrentUser()
	if user == nil {
		state := a.sess.State()
		if state.Phase == session.SignedIn {
			fmt.Println("signed in (profile not loaded; run login again to refresh)")
			return nil
		}
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> (%s, #%d)\n", user.Name, user.Email, user.Role, user.ID)
	return nil
}

// --- forum ---

func (a *app) subjects(ctx context.Context) error {
	subjects, err := a.client.GetSubjects(ctx)
	if err != nil {
		return err
	}
	for _, subject := range subjects {
		fmt.Printf("%3d  %-14s %s\n", subject.ID, subject.Name, subject.Description)
	}
	return nil
}

func (a *app) topics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("topics", flag.ExitOnError)
	subjectID := fs.Int64("subject", 0, "filter by subject id")
	search := fs.String("search", "", "search title and content")
	unresolved := fs.Bool("unresolved", false, "only unresolved topics")
	mine := fs.Bool("mine", false, "only my topics")
	fs.Parse(args)

	var filters api.TopicFilters
	if *subjectID != 0 {
		filters.SubjectID = subjectID
	}
	filters.Search = *search
	if *unresolved {
		resolved := false
		filters.IsResolved = &resolved
	}
	if *mine {
		user := a.sess.CurrentUser()
		if user == nil {
			return fmt.Errorf("sign in to list your topics")
		}
		filters.UserID = &user.ID
	}

	if err := a.forum.LoadTopics(ctx, filters); err != nil {
		return err
	}
	for _, topic := range a.forum.Topics() {
		status := " "
		if topic.IsResolved {
			status = "+"
		}
		fmt.Printf("%s %4d  [%s] %s  (%s, %d respostas, %d visualizações)\n",
			status, topic.ID, a.forum.SubjectName(topic.SubjectID), topic.Title,
			topic.AuthorName, topic.RepliesCount, topic.ViewsCount)
	}
	return nil
}

func (a *app) topic(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: topic <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid topic id %q", args[0])
	}
	topic, err := a.client.GetForumTopic(ctx, id)
	if err != nil {
		return err
	}
	if err := a.forum.OpenTopic(ctx, *topic); err != nil {
		return err
	}

	fmt.Printf("#%d %s\n", topic.ID, topic.Title)
	fmt.Printf("por %s em %s", topic.AuthorName, topic.CreatedAt.Format("02/01/2006"))
	if topic.IsResolved {
		fmt.Print("  [resolvido]")
	}
	fmt.Printf("\n\n%s\n", topic.Content)

	replies := a.forum.Replies()
	if len(replies) > 0 {
		fmt.Printf("\n--- %d resposta(s) ---\n", len(replies))
	}
	for _, reply := range replies {
		marker := ""
		if reply.IsAccepted {
			marker = " [aceita]"
		}
		fmt.Printf("\n[%d] %s%s (%d curtidas)\n%s\n", reply.ID, reply.AuthorName, marker, reply.LikesCount, reply.Content)
	}
	return nil
}

func (a *app) post(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	subjectID := fs.Int64("subject", 0, "subject id")
	title := fs.String("title", "", "topic title")
	content := fs.String("content", "", "topic body")
	fs.Parse(args)

	topic, err := a.forum.CreateTopic(ctx, *title, *content, *subjectID)
	if err != nil {
		return err
	}
	fmt.Printf("topic #%d created\n", topic.ID)
	return nil
}

func (a *app) reply(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: reply <topic-id> <text>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid topic id %q", args[0])
	}
	topic, err := a.client.GetForumTopic(ctx, id)
	if err != nil {
		return err
	}
	if err := a.forum.OpenTopic(ctx, *topic); err != nil {
		return err
	}
	reply, err := a.forum.CreateReply(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Printf("reply #%d posted\n", reply.ID)
	return nil
}

func (a *app) like(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: like <reply-id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid reply id %q", args[0])
	}
	reply, err := a.client.LikeForumReply(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("reply #%d now has %d curtidas\n", reply.ID, reply.LikesCount)
	return nil
}

// --- content ---

func (a *app) news(ctx context.Context) error {
	items, err := a.client.GetNews(ctx, api.NewsFilters{})
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("%4d  [%s] %s (%s)\n", item.ID, item.NewsType, item.Title, item.PublishedAt.Format("02/01/2006"))
	}
	return nil
}

func (a *app) partners(ctx context.Context) error {
	partners, err := a.client.GetPartners(ctx)
	if err != nil {
		return err
	}
	for _, partner := range partners {
		fmt.Printf("%4d  %s (%s) - %s, %s\n", partner.ID, partner.Name, partner.PartnerType, partner.City, partner.State)
	}
	return nil
}

func (a *app) lessons(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lessons", flag.ExitOnError)
	subjectID := fs.Int64("subject", 0, "filter by subject id")
	fs.Parse(args)

	var filters api.LessonFilters
	if *subjectID != 0 {
		filters.SubjectID = subjectID
	}
	lessons, err := a.client.GetPublishedLessons(ctx, filters)
	if err != nil {
		return err
	}
	for _, lesson := range lessons {
		media := lesson.MediaType
		if media == "" {
			media = "texto"
		}
		fmt.Printf("%4d  %s [%s] (%d visualizações, %d curtidas)\n",
			lesson.ID, lesson.Title, media, lesson.ViewsCount, lesson.LikesCount)
	}
	return nil
}

func (a *app) publish(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	subjectID := fs.Int64("subject", 0, "subject id")
	title := fs.String("title", "", "lesson title")
	desc := fs.String("desc", "", "lesson description")
	mediaPath := fs.String("media", "", "path to a media file")
	fs.Parse(args)

	user := a.sess.CurrentUser()
	if user == nil {
		return fmt.Errorf("sign in to publish a lesson")
	}
	var media *api.MediaFile
	if *mediaPath != "" {
		media = &api.MediaFile{Path: *mediaPath}
	}
	lesson, err := a.client.PublishLesson(ctx, user.ID, *subjectID, *title, *desc, media)
	if err != nil {
		return err
	}
	fmt.Printf("lesson #%d published\n", lesson.ID)
	return nil
}
