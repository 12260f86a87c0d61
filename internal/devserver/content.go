package devserver

import (
	"database/sql"
	"strings"
	"time"

	"educaconecta/internal/api"
)

// --- news ---

type newsRow struct {
	ID          int64      `db:"id"`
	Title       string     `db:"title"`
	Content     string     `db:"content"`
	NewsType    string     `db:"news_type"`
	Author      string     `db:"author"`
	IsFeatured  bool       `db:"is_featured"`
	IsActive    bool       `db:"is_active"`
	PublishedAt time.Time  `db:"published_at"`
	EventDate   *time.Time `db:"event_date"`
	ViewsCount  int        `db:"views_count"`
}

func (r newsRow) toAPI() api.News {
	return api.News{
		ID:          r.ID,
		Title:       r.Title,
		Content:     r.Content,
		NewsType:    api.NewsType(r.NewsType),
		Author:      r.Author,
		IsFeatured:  r.IsFeatured,
		IsActive:    r.IsActive,
		PublishedAt: r.PublishedAt,
		EventDate:   r.EventDate,
		ViewsCount:  r.ViewsCount,
	}
}

type newsQuery struct {
	NewsType string
	Featured *bool
	Skip     int
	Limit    int
}

func (s *Store) listNews(q newsQuery) ([]api.News, error) {
	query := `SELECT * FROM news`
	where := []string{"is_active = 1"}
	args := []any{}
	if q.NewsType != "" {
		where = append(where, "news_type = ?")
		args = append(args, q.NewsType)
	}
	if q.Featured != nil {
		where = append(where, "is_featured = ?")
		args = append(args, *q.Featured)
	}
	query += " WHERE " + strings.Join(where, " AND ")
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	query += " ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Skip)

	rows := []newsRow{}
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	items := make([]api.News, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toAPI())
	}
	return items, nil
}

func (s *Store) getNews(id int64) (*api.News, error) {
	var row newsRow
	err := s.db.Get(&row, `SELECT * FROM news WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item := row.toAPI()
	return &item, nil
}

func (s *Store) bumpNewsViews(id int64) error {
	_, err := s.db.Exec(`UPDATE news SET views_count = views_count + 1 WHERE id = ?`, id)
	return err
}

func (s *Store) createNews(data api.NewsCreate) (*api.News, error) {
	newsType := string(data.NewsType)
	if newsType == "" {
		newsType = string(api.NewsTypeNews)
	}
	res, err := s.db.Exec(
		`INSERT INTO news (title, content, news_type, author, is_featured, published_at, event_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		data.Title, data.Content, newsType, data.Author, data.IsFeatured, time.Now().UTC(), data.EventDate,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.getNews(id)
}

func (s *Store) deleteNews(id int64) error {
	_, err := s.db.Exec(`DELETE FROM news WHERE id = ?`, id)
	return err
}

// --- partners ---

type partnerRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	PartnerType string `db:"partner_type"`
	Description string `db:"description"`
	Address     string `db:"address"`
	City        string `db:"city"`
	State       string `db:"state"`
	Phone       string `db:"phone"`
	Email       string `db:"email"`
	IsActive    bool   `db:"is_active"`
}

func (r partnerRow) toAPI() api.PartnerLocation {
	return api.PartnerLocation{
		ID:          r.ID,
		Name:        r.Name,
		PartnerType: r.PartnerType,
		Description: r.Description,
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		Phone:       r.Phone,
		Email:       r.Email,
		IsActive:    r.IsActive,
	}
}

func (s *Store) listPartners(city, partnerType string) ([]api.PartnerLocation, error) {
	query := `SELECT * FROM partners`
	where := []string{"is_active = 1"}
	args := []any{}
	if city != "" {
		where = append(where, "city = ?")
		args = append(args, city)
	}
	if partnerType != "" {
		where = append(where, "partner_type = ?")
		args = append(args, partnerType)
	}
	query += " WHERE " + strings.Join(where, " AND ") + " ORDER BY name"

	rows := []partnerRow{}
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	partners := make([]api.PartnerLocation, 0, len(rows))
	for _, row := range rows {
		partners = append(partners, row.toAPI())
	}
	return partners, nil
}

func (s *Store) getPartner(id int64) (*api.PartnerLocation, error) {
	var row partnerRow
	err := s.db.Get(&row, `SELECT * FROM partners WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	partner := row.toAPI()
	return &partner, nil
}

// --- published lessons ---

type lessonRow struct {
	ID          int64      `db:"id"`
	VolunteerID int64      `db:"volunteer_id"`
	SubjectID   int64      `db:"subject_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	MediaURL    string     `db:"media_url"`
	MediaType   string     `db:"media_type"`
	ViewsCount  int        `db:"views_count"`
	LikesCount  int        `db:"likes_count"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

func (r lessonRow) toAPI() api.PublishedLesson {
	return api.PublishedLesson{
		ID:          r.ID,
		VolunteerID: r.VolunteerID,
		SubjectID:   r.SubjectID,
		Title:       r.Title,
		Description: r.Description,
		MediaURL:    r.MediaURL,
		MediaType:   r.MediaType,
		ViewsCount:  r.ViewsCount,
		LikesCount:  r.LikesCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type lessonQuery struct {
	SubjectID   *int64
	VolunteerID *int64
	Skip        int
	Limit       int
}

func (s *Store) listLessons(q lessonQuery) ([]api.PublishedLesson, error) {
	query := `SELECT * FROM published_lessons`
	where := []string{}
	args := []any{}
	if q.SubjectID != nil {
		where = append(where, "subject_id = ?")
		args = append(args, *q.SubjectID)
	}
	if q.VolunteerID != nil {
		where = append(where, "volunteer_id = ?")
		args = append(args, *q.VolunteerID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Skip)

	rows := []lessonRow{}
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	lessons := make([]api.PublishedLesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toAPI())
	}
	return lessons, nil
}

func (s *Store) getLesson(id int64) (*api.PublishedLesson, error) {
	var row lessonRow
	err := s.db.Get(&row, `SELECT * FROM published_lessons WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	lesson := row.toAPI()
	return &lesson, nil
}

func (s *Store) createLesson(volunteerID, subjectID int64, title, description, mediaURL, mediaType string) (*api.PublishedLesson, error) {
	res, err := s.db.Exec(
		`INSERT INTO published_lessons (volunteer_id, subject_id, title, description, media_url, media_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		volunteerID, subjectID, title, description, mediaURL, mediaType, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.getLesson(id)
}

func (s *Store) updateLesson(id int64, patch api.LessonUpdate) (*api.PublishedLesson, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	args = append(args, id)
	if _, err := s.db.Exec(`UPDATE published_lessons SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, err
	}
	return s.getLesson(id)
}

func (s *Store) deleteLesson(id int64) error {
	_, err := s.db.Exec(`DELETE FROM published_lessons WHERE id = ?`, id)
	return err
}

func (s *Store) bumpLessonViews(id int64) error {
	_, err := s.db.Exec(`UPDATE published_lessons SET views_count = views_count + 1 WHERE id = ?`, id)
	return err
}

func (s *Store) likeLesson(id int64) (int, error) {
	if _, err := s.db.Exec(`UPDATE published_lessons SET likes_count = likes_count + 1 WHERE id = ?`, id); err != nil {
		return 0, err
	}
	var likes int
	err := s.db.Get(&likes, `SELECT likes_count FROM published_lessons WHERE id = ?`, id)
	return likes, err
}
