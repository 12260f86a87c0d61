// Package devserver is a self-contained development implementation of the
// EducaConecta REST API, backed by sqlite, so the client is exercisable and
// testable without the production backend.
package devserver

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"educaconecta/internal/api"
)

var tableCreationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		phone TEXT NOT NULL DEFAULT '',
		profile_image TEXT NOT NULL DEFAULT '',
		location_city TEXT NOT NULL DEFAULT '',
		location_state TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		is_online_available BOOLEAN NOT NULL DEFAULT 1,
		is_presencial_available BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME,
		last_login DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS tokens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		token TEXT NOT NULL UNIQUE,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS subjects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS forum_topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		is_resolved BOOLEAN NOT NULL DEFAULT 0,
		views_count INTEGER NOT NULL DEFAULT 0,
		replies_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME,
		FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS forum_replies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		is_accepted BOOLEAN NOT NULL DEFAULT 0,
		likes_count INTEGER NOT NULL DEFAULT 0,
		parent_reply_id INTEGER,
		created_at DATETIME NOT NULL,
		updated_at DATETIME,
		FOREIGN KEY (topic_id) REFERENCES forum_topics (id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		news_type TEXT NOT NULL DEFAULT 'news',
		author TEXT NOT NULL DEFAULT '',
		is_featured BOOLEAN NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		published_at DATETIME NOT NULL,
		event_date DATETIME,
		views_count INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS partners (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		partner_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT 1
	);`,
	`CREATE TABLE IF NOT EXISTS published_lessons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		volunteer_id INTEGER NOT NULL,
		subject_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		media_url TEXT NOT NULL DEFAULT '',
		media_type TEXT NOT NULL DEFAULT '',
		views_count INTEGER NOT NULL DEFAULT 0,
		likes_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME
	);`,
	`CREATE INDEX IF NOT EXISTS idx_replies_on_topic_id ON forum_replies (topic_id);`,
	`CREATE INDEX IF NOT EXISTS idx_topics_on_created_at ON forum_topics (created_at);`,
}

var seedSubjects = []api.Subject{
	{Name: "Matemática", Description: "Aritmética, álgebra e geometria", Category: "exatas", Icon: "calculator"},
	{Name: "Português", Description: "Leitura, escrita e gramática", Category: "linguagens", Icon: "book"},
	{Name: "Ciências", Description: "Física, química e biologia", Category: "naturais", Icon: "flask"},
	{Name: "História", Description: "História geral e do Brasil", Category: "humanas", Icon: "landmark"},
	{Name: "Informática", Description: "Informática básica e programação", Category: "tecnologia", Icon: "laptop"},
}

type Store struct {
	db *sqlx.DB
}

// Open connects to the sqlite database at path, bootstraps the schema and
// seeds the subject reference data on first run.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_loc=UTC&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite serializes writers; a single connection avoids busy errors.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureTables() error {
	for _, stmt := range tableCreationStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

func (s *Store) seed() error {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM subjects`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, subject := range seedSubjects {
		_, err := s.db.Exec(
			`INSERT INTO subjects (name, description, category, icon) VALUES (?, ?, ?, ?)`,
			subject.Name, subject.Description, subject.Category, subject.Icon,
		)
		if err != nil {
			return fmt.Errorf("seed subjects: %w", err)
		}
	}
	return nil
}

// --- users and tokens ---

type userRow struct {
	ID                    int64      `db:"id"`
	Email                 string     `db:"email"`
	PasswordHash          string     `db:"password_hash"`
	Name                  string     `db:"name"`
	Role                  string     `db:"role"`
	Status                string     `db:"status"`
	Phone                 string     `db:"phone"`
	ProfileImage          string     `db:"profile_image"`
	LocationCity          string     `db:"location_city"`
	LocationState         string     `db:"location_state"`
	Bio                   string     `db:"bio"`
	IsOnlineAvailable     bool       `db:"is_online_available"`
	IsPresencialAvailable bool       `db:"is_presencial_available"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             *time.Time `db:"updated_at"`
	LastLogin             *time.Time `db:"last_login"`
}

func (r userRow) toAPI() api.User {
	return api.User{
		ID:                    r.ID,
		Email:                 r.Email,
		Name:                  r.Name,
		Role:                  api.UserRole(r.Role),
		Status:                api.UserStatus(r.Status),
		Phone:                 r.Phone,
		ProfileImage:          r.ProfileImage,
		LocationCity:          r.LocationCity,
		LocationState:         r.LocationState,
		Bio:                   r.Bio,
		IsOnlineAvailable:     r.IsOnlineAvailable,
		IsPresencialAvailable: r.IsPresencialAvailable,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
		LastLogin:             r.LastLogin,
	}
}

func (s *Store) createUser(email, passwordHash, name, role string) (*api.User, error) {
	res, err := s.db.Exec(
		`INSERT INTO users (email, password_hash, name, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		email, passwordHash, name, role, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.getUser(id)
}

func (s *Store) getUserRowByEmail(email string) (*userRow, error) {
	var row userRow
	err := s.db.Get(&row, `SELECT * FROM users WHERE email = ?`, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) getUser(id int64) (*api.User, error) {
	var row userRow
	err := s.db.Get(&row, `SELECT * FROM users WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user := row.toAPI()
	return &user, nil
}

func (s *Store) updateUser(id int64, patch api.UserUpdate) (*api.User, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.LocationCity != nil {
		add("location_city", *patch.LocationCity)
	}
	if patch.LocationState != nil {
		add("location_state", *patch.LocationState)
	}
	if patch.Bio != nil {
		add("bio", *patch.Bio)
	}
	if patch.ProfileImage != nil {
		add("profile_image", *patch.ProfileImage)
	}
	if patch.IsOnlineAvailable != nil {
		add("is_online_available", *patch.IsOnlineAvailable)
	}
	if patch.IsPresencialAvailable != nil {
		add("is_presencial_available", *patch.IsPresencialAvailable)
	}
	args = append(args, id)
	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := s.db.Exec(query, args...); err != nil {
		return nil, err
	}
	return s.getUser(id)
}

func (s *Store) touchLastLogin(id int64) error {
	_, err := s.db.Exec(`UPDATE users SET last_login = ? WHERE id = ?`, time.Now().UTC(), id)
	return err
}

func (s *Store) saveToken(token string, userID int64) error {
	_, err := s.db.Exec(
		`INSERT INTO tokens (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().UTC(),
	)
	return err
}

// userIDForToken resolves a bearer token; 0 means unknown token.
func (s *Store) userIDForToken(token string) (int64, error) {
	var id int64
	err := s.db.Get(&id, `SELECT user_id FROM tokens WHERE token = ?`, token)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return id, err
}

// --- subjects ---

func (s *Store) listSubjects() ([]api.Subject, error) {
	subjects := []api.Subject{}
	err := s.db.Select(&subjects, `SELECT id, name, description, category, icon FROM subjects ORDER BY id`)
	return subjects, err
}

func (s *Store) getSubject(id int64) (*api.Subject, error) {
	var subject api.Subject
	err := s.db.Get(&subject, `SELECT id, name, description, category, icon FROM subjects WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// --- forum topics ---

type topicRow struct {
	ID           int64      `db:"id"`
	SubjectID    int64      `db:"subject_id"`
	UserID       int64      `db:"user_id"`
	Title        string     `db:"title"`
	Content      string     `db:"content"`
	IsResolved   bool       `db:"is_resolved"`
	ViewsCount   int        `db:"views_count"`
	RepliesCount int        `db:"replies_count"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
	AuthorName   string     `db:"author_name"`
}

func (r topicRow) toAPI() api.ForumTopic {
	return api.ForumTopic{
		ID:           r.ID,
		SubjectID:    r.SubjectID,
		UserID:       r.UserID,
		Title:        r.Title,
		Content:      r.Content,
		IsResolved:   r.IsResolved,
		ViewsCount:   r.ViewsCount,
		RepliesCount: r.RepliesCount,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		AuthorName:   r.AuthorName,
	}
}

const topicColumns = `t.id, t.subject_id, t.user_id, t.title, t.content, t.is_resolved,
	t.views_count, t.replies_count, t.created_at, t.updated_at, u.name AS author_name`

type topicQuery struct {
	SubjectID  *int64
	UserID     *int64
	IsResolved *bool
	Search     string
	Skip       int
	Limit      int
}

func (s *Store) listTopics(q topicQuery) ([]api.ForumTopic, error) {
	query := `SELECT ` + topicColumns + ` FROM forum_topics t JOIN users u ON t.user_id = u.id`
	where := []string{}
	args := []any{}
	if q.SubjectID != nil {
		where = append(where, "t.subject_id = ?")
		args = append(args, *q.SubjectID)
	}
	if q.UserID != nil {
		where = append(where, "t.user_id = ?")
		args = append(args, *q.UserID)
	}
	if q.IsResolved != nil {
		where = append(where, "t.is_resolved = ?")
		args = append(args, *q.IsResolved)
	}
	if q.Search != "" {
		where = append(where, "(t.title LIKE ? OR t.content LIKE ?)")
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	query += " ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Skip)

	rows := []topicRow{}
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	topics := make([]api.ForumTopic, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, row.toAPI())
	}
	return topics, nil
}

func (s *Store) getTopic(id int64) (*api.ForumTopic, error) {
	var row topicRow
	err := s.db.Get(&row, `SELECT `+topicColumns+` FROM forum_topics t JOIN users u ON t.user_id = u.id WHERE t.id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	topic := row.toAPI()
	return &topic, nil
}

func (s *Store) createTopic(data api.TopicCreate) (*api.ForumTopic, error) {
	res, err := s.db.Exec(
		`INSERT INTO forum_topics (subject_id, user_id, title, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		data.SubjectID, data.UserID, data.Title, data.Content, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.getTopic(id)
}

func (s *Store) updateTopic(id int64, patch api.TopicUpdate) (*api.ForumTopic, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.IsResolved != nil {
		sets = append(sets, "is_resolved = ?")
		args = append(args, *patch.IsResolved)
	}
	args = append(args, id)
	if _, err := s.db.Exec(`UPDATE forum_topics SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, err
	}
	return s.getTopic(id)
}

// deleteTopic removes a topic and cascades to its replies.
func (s *Store) deleteTopic(id int64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM forum_replies WHERE topic_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM forum_topics WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) bumpTopicViews(id int64) error {
	_, err := s.db.Exec(`UPDATE forum_topics SET views_count = views_count + 1 WHERE id = ?`, id)
	return err
}

// --- forum replies ---

type replyRow struct {
	ID            int64      `db:"id"`
	TopicID       int64      `db:"topic_id"`
	UserID        int64      `db:"user_id"`
	Content       string     `db:"content"`
	IsAccepted    bool       `db:"is_accepted"`
	LikesCount    int        `db:"likes_count"`
	ParentReplyID *int64     `db:"parent_reply_id"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at"`
	AuthorName    string     `db:"author_name"`
}

func (r replyRow) toAPI() api.ForumReply {
	return api.ForumReply{
		ID:            r.ID,
		TopicID:       r.TopicID,
		UserID:        r.UserID,
		Content:       r.Content,
		IsAccepted:    r.IsAccepted,
		LikesCount:    r.LikesCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		AuthorName:    r.AuthorName,
		ParentReplyID: r.ParentReplyID,
	}
}

const replyColumns = `r.id, r.topic_id, r.user_id, r.content, r.is_accepted, r.likes_count,
	r.parent_reply_id, r.created_at, r.updated_at, u.name AS author_name`

func (s *Store) listReplies(topicID int64, skip, limit int) ([]api.ForumReply, error) {
	if limit <= 0 {
		limit = 50
	}
	rows := []replyRow{}
	err := s.db.Select(&rows,
		`SELECT `+replyColumns+` FROM forum_replies r JOIN users u ON r.user_id = u.id
		 WHERE r.topic_id = ? ORDER BY r.created_at ASC, r.id ASC LIMIT ? OFFSET ?`,
		topicID, limit, skip,
	)
	if err != nil {
		return nil, err
	}
	replies := make([]api.ForumReply, 0, len(rows))
	for _, row := range rows {
		replies = append(replies, row.toAPI())
	}
	return replies, nil
}

func (s *Store) getReply(id int64) (*api.ForumReply, error) {
	var row replyRow
	err := s.db.Get(&row,
		`SELECT `+replyColumns+` FROM forum_replies r JOIN users u ON r.user_id = u.id WHERE r.id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	reply := row.toAPI()
	return &reply, nil
}

// createReply inserts the reply and bumps the parent topic's counter in one
// transaction.
func (s *Store) createReply(data api.ReplyCreate) (*api.ForumReply, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO forum_replies (topic_id, user_id, content, parent_reply_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		data.TopicID, data.UserID, data.Content, data.ParentReplyID, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`UPDATE forum_topics SET replies_count = replies_count + 1 WHERE id = ?`, data.TopicID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.getReply(id)
}

func (s *Store) updateReply(id int64, patch api.ReplyUpdate) (*api.ForumReply, error) {
	if patch.Content == nil {
		return s.getReply(id)
	}
	_, err := s.db.Exec(
		`UPDATE forum_replies SET content = ?, updated_at = ? WHERE id = ?`,
		*patch.Content, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, err
	}
	return s.getReply(id)
}

// deleteReply removes the reply and decrements the topic counter, floored
// at zero.
func (s *Store) deleteReply(id, topicID int64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM forum_replies WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`UPDATE forum_topics SET replies_count = MAX(0, replies_count - 1) WHERE id = ?`, topicID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) likeReply(id int64) (*api.ForumReply, error) {
	if _, err := s.db.Exec(`UPDATE forum_replies SET likes_count = likes_count + 1 WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return s.getReply(id)
}

// acceptReply marks the reply accepted and resolves its topic.
func (s *Store) acceptReply(id, topicID int64) (*api.ForumReply, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`UPDATE forum_replies SET is_accepted = 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`UPDATE forum_topics SET is_resolved = 1 WHERE id = ?`, topicID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.getReply(id)
}
