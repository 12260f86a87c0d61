package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"educaconecta/internal/api"
	"educaconecta/internal/logging"
)

// Server bundles the HTTP handlers with their storage and logger.
type Server struct {
	store      *Store
	log        *logging.Logger
	uploadsDir string
}

func NewServer(store *Store, log *logging.Logger, uploadsDir string) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{store: store, log: log, uploadsDir: uploadsDir}
}

type ctxKey int

const ctxKeyUserID ctxKey = 1

func authedUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKeyUserID).(int64)
	return id
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeDetail emits the error envelope the client expects: a detail string.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeValidation emits a 422 with a detail list, one entry per message.
func writeValidation(w http.ResponseWriter, msgs ...string) {
	detail := make([]map[string]string, 0, len(msgs))
	for _, msg := range msgs {
		detail = append(detail, map[string]string{"msg": msg})
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": detail})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Errorf("%s: %v", op, err)
	writeDetail(w, http.StatusInternalServerError, "Erro interno do servidor")
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func queryInt64Ptr(r *http.Request, name string) *int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func queryBoolPtr(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

// requireAuth resolves the bearer token to a user id before the handler runs.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		userID, err := s.store.userIDForToken(token)
		if err != nil {
			s.internalError(w, "resolve token", err)
			return
		}
		if userID == 0 {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUserID, userID)))
	}
}

// --- auth and users ---

func (s *Server) mintToken(user *api.User) (*api.Token, error) {
	token := uuid.NewString()
	if err := s.store.saveToken(token, user.ID); err != nil {
		return nil, err
	}
	return &api.Token{AccessToken: token, TokenType: "bearer", User: *user}, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeValidation(w, "Corpo da requisição inválido")
		return
	}
	row, err := s.store.getUserRowByEmail(creds.Email)
	if err != nil {
		s.internalError(w, "login lookup", err)
		return
	}
	if row == nil || bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(creds.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Email ou senha inválidos")
		return
	}
	if err := s.store.touchLastLogin(row.ID); err != nil {
		s.internalError(w, "touch last login", err)
		return
	}
	user := row.toAPI()
	token, err := s.mintToken(&user)
	if err != nil {
		s.internalError(w, "mint token", err)
		return
	}
	s.log.Infof("login user=%d", user.ID)
	writeJSON(w, http.StatusOK, token)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, "Corpo da requisição inválido")
		return
	}
	var problems []string
	if strings.TrimSpace(req.Email) == "" {
		problems = append(problems, "Email é obrigatório")
	}
	if len(req.Password) < 6 {
		problems = append(problems, "A senha deve ter pelo menos 6 caracteres")
	}
	if strings.TrimSpace(req.Name) == "" {
		problems = append(problems, "Nome é obrigatório")
	}
	if req.Role != api.RoleLearner && req.Role != api.RoleVolunteer {
		problems = append(problems, "Tipo de usuário inválido")
	}
	if len(problems) > 0 {
		writeValidation(w, problems...)
		return
	}

	existing, err := s.store.getUserRowByEmail(req.Email)
	if err != nil {
		s.internalError(w, "signup lookup", err)
		return
	}
	if existing != nil {
		writeDetail(w, http.StatusBadRequest, "Email já cadastrado")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, "hash password", err)
		return
	}
	user, err := s.store.createUser(req.Email, string(hash), req.Name, string(req.Role))
	if err != nil {
		s.internalError(w, "create user", err)
		return
	}
	token, err := s.mintToken(user)
	if err != nil {
		s.internalError(w, "mint token", err)
		return
	}
	s.log.Infof("signup user=%d role=%s", user.ID, user.Role)
	writeJSON(w, http.StatusCreated, token)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return
	}
	user, err := s.store.getUser(id)
	if err != nil {
		s.internalError(w, "get user", err)
		return
	}
	if user == nil {
		writeDetail(w, http.StatusNotFound, "Usuário não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return
	}
	if authedUserID(r) != id {
		writeDetail(w, http.StatusForbidden, "Sem permissão para editar este perfil")
		return
	}
	var patch api.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeValidation(w, "Corpo da requisição inválido")
		return
	}
	user, err := s.store.updateUser(id, patch)
	if err != nil {
		s.internalError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// --- subjects ---

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.store.listSubjects()
	if err != nil {
		s.internalError(w, "list subjects", err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return
	}
	subject, err := s.store.getSubject(id)
	if err != nil {
		s.internalError(w, "get subject", err)
		return
	}
	if subject == nil {
		writeDetail(w, http.StatusNotFound, "Assunto não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

// --- forum ---

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	q := topicQuery{
		SubjectID:  queryInt64Ptr(r, "subject_id"),
		UserID:     queryInt64Ptr(r, "user_id"),
		IsResolved: queryBoolPtr(r, "is_resolved"),
		Search:     r.URL.Query().Get("search"),
		Skip:       queryInt(r, "skip", 0),
		Limit:      queryInt(r, "limit", 20),
	}
	topics, err := s.store.listTopics(q)
	if err != nil {
		s.internalError(w, "list topics", err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	var data api.TopicCreate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeValidation(w, "Corpo da requisição inválido")
		return
	}
	var problems []string
	if strings.TrimSpace(data.Title) == "" {
		problems = append(problems, "Título é obrigatório")
	}
	if strings.TrimSpace(data.Content) == "" {
		problems = append(problems, "Conteúdo é obrigatório")
	}
	if len(problems) > 0 {
		writeValidation(w, problems...)
		return
	}
	subject, err := s.store.getSubject(data.SubjectID)
	if err != nil {
		s.internalError(w, "check subject", err)
		return
	}
	if subject == nil {
		writeDetail(w, http.StatusNotFound, "Assunto não encontrado")
		return
	}
	// The authenticated user is the author regardless of what the body says.
	data.UserID = authedUserID(r)
	topic, err := s.store.createTopic(data)
	if err != nil {
		s.internalError(w, "create topic", err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

// handleGetTopic counts the view before returning, so the payload already
// reflects it.
func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return
	}
	existing, err := s.store.getTopic(id)
	if err != nil {
		s.internalError(w, "get topic", err)
		return
	}
	if existing == nil {
		writeDetail(w, http.StatusNotFound, "Tópico não encontrado")
		return
	}
	if err := s.store.bumpTopicViews(id); err != nil {
		s.internalError(w, "bump topic views", err)
		return
	}
	topic, err := s.store.getTopic(id)
	if err != nil {
		s.internalError(w, "get topic", err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

// lookupOwnTopic fetches the topic and enforces that the authenticated user
// is its author. A nil return means the response was already written.
func (s *Server) lookupOwnTopic(w http.ResponseWriter, r *http.Request, denied string) *api.ForumTopic {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return nil
	}
	topic, err := s.store.getTopic(id)
	if err != nil {
		s.internalError(w, "get topic", err)
		return nil
	}
	if topic == nil {
		writeDetail(w, http.StatusNotFound, "Tópico não encontrado")
		return nil
	}
	if topic.UserID != authedUserID(r) {
		writeDetail(w, http.StatusForbidden, denied)
		return nil
	}
	return topic
}

func (s *Server) handleUpdateTopic(w http.ResponseWriter, r *http.Request) {
	topic := s.lookupOwnTopic(w, r, "Sem permissão para editar este tópico")
	if topic == nil {
		return
	}
	var patch api.TopicUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeValidation(w, "Corpo da requisição inválido")
		return
	}
	updated, err := s.store.updateTopic(topic.ID, patch)
	if err != nil {
		s.internalError(w, "update topic", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	topic := s.lookupOwnTopic(w, r, "Sem permissão para excluir este tópico")
	if topic == nil {
		return
	}
	if err := s.store.deleteTopic(topic.ID); err != nil {
		s.internalError(w, "delete topic", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tópico excluído com sucesso"})
}

func (s *Server) handleListReplies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return
	}
	replies, err := s.store.listReplies(id, queryInt(r, "skip", 0), queryInt(r, "limit", 50))
	if err != nil {
		s.internalError(w, "list replies", err)
		return
	}
	writeJSON(w, http.StatusOK, replies)
}

func (s *Server) handleCreateReply(w http.ResponseWriter, r *http.Request) {
	var data api.ReplyCreate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeValidation(w, "Corpo da requisição inválido")
		return
	}
	if strings.TrimSpace(data.Content) == "" {
		writeValidation(w, "Conteúdo é obrigatório")
		return
	}
	topic, err := s.store.getTopic(data.TopicID)
	if err != nil {
		s.internalError(w, "check topic", err)
		return
	}
	if topic == nil {
		writeDetail(w, http.StatusNotFound, "Tópico não encontrado")
		return
	}
	data.UserID = authedUserID(r)
	reply, err := s.store.createReply(data)
	if err != nil {
		s.internalError(w, "create reply", err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (s *Server) lookupReply(w http.ResponseWriter, r *http.Request) *api.ForumReply {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return nil
	}
	reply, err := s.store.getReply(id)
	if err != nil {
		s.internalError(w, "get reply", err)
		return nil
	}
	if reply == nil {
		writeDetail(w, http.StatusNotFound, "Resposta não encontrada")
		return nil
	}
	return reply
}

func (s *Server) handleUpdateReply(w http.ResponseWriter, r *http.Request) {
	reply := s.lookupReply(w, r)
	if reply == nil {
		return
	}
	if reply.UserID != authedUserID(r) {
		writeDetail(w, http.StatusForbidden, "Sem permissão para editar esta resposta")
		return
	}
	var patch api.ReplyUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeValidation(w, "Corpo da requisição inválido")
		return
	}
	updated, err := s.store.updateReply(reply.ID, patch)
	if err != nil {
		s.internalError(w, "update reply", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteReply(w http.ResponseWriter, r *http.Request) {
	reply := s.lookupReply(w, r)
	if reply == nil {
		return
	}
	if reply.UserID != authedUserID(r) {
		writeDetail(w, http.StatusForbidden, "Sem permissão para excluir esta resposta")
		return
	}
	if err := s.store.deleteReply(reply.ID, reply.TopicID); err != nil {
		s.internalError(w, "delete reply", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Resposta excluída com sucesso"})
}

// handleLikeReply increments unconditionally; there is no per-user like
// bookkeeping, matching the client's fire-and-forget semantics.
func (s *Server) handleLikeReply(w http.ResponseWriter, r *http.Request) {
	reply := s.lookupReply(w, r)
	if reply == nil {
		return
	}
	liked, err := s.store.likeReply(reply.ID)
	if err != nil {
		s.internalError(w, "like reply", err)
		return
	}
	writeJSON(w, http.StatusOK, liked)
}

func (s *Server) handleAcceptReply(w http.ResponseWriter, r *http.Request) {
	reply := s.lookupReply(w, r)
	if reply == nil {
		return
	}
	topic, err := s.store.getTopic(reply.TopicID)
	if err != nil {
		s.internalError(w, "get topic", err)
		return
	}
	if topic == nil {
		writeDetail(w, http.StatusNotFound, "Tópico não encontrado")
		return
	}
	if topic.UserID != authedUserID(r) {
		writeDetail(w, http.StatusForbidden, "Apenas o autor do tópico pode aceitar uma resposta")
		return
	}
	accepted, err := s.store.acceptReply(reply.ID, reply.TopicID)
	if err != nil {
		s.internalError(w, "accept reply", err)
		return
	}
	writeJSON(w, http.StatusOK, accepted)
}

// --- news and partners ---

func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	q := newsQuery{
		NewsType: r.URL.Query().Get("news_type"),
		Featured: queryBoolPtr(r, "is_featured"),
		Skip:     queryInt(r, "skip", 0),
		Limit:    queryInt(r, "limit", 20),
	}
	items, err := s.store.listNews(q)
	if err != nil {
		s.internalError(w, "list news", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return
	}
	item, err := s.store.getNews(id)
	if err != nil {
		s.internalError(w, "get news", err)
		return
	}
	if item == nil {
		writeDetail(w, http.StatusNotFound, "Notícia não encontrada")
		return
	}
	if err := s.store.bumpNewsViews(id); err != nil {
		s.internalError(w, "bump news views", err)
		return
	}
	item.ViewsCount++
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleCreateNews(w http.ResponseWriter, r *http.Request) {
	var data api.NewsCreate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeValidation(w, "Corpo da requisição inválido")
		return
	}
	var problems []string
	if strings.TrimSpace(data.Title) == "" {
		problems = append(problems, "Título é obrigatório")
	}
	if strings.TrimSpace(data.Content) == "" {
		problems = append(problems, "Conteúdo é obrigatório")
	}
	if len(problems) > 0 {
		writeValidation(w, problems...)
		return
	}
	item, err := s.store.createNews(data)
	if err != nil {
		s.internalError(w, "create news", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleDeleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return
	}
	item, err := s.store.getNews(id)
	if err != nil {
		s.internalError(w, "get news", err)
		return
	}
	if item == nil {
		writeDetail(w, http.StatusNotFound, "Notícia não encontrada")
		return
	}
	if err := s.store.deleteNews(id); err != nil {
		s.internalError(w, "delete news", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notícia excluída com sucesso"})
}

func (s *Server) handleListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := s.store.listPartners(r.URL.Query().Get("city"), r.URL.Query().Get("partner_type"))
	if err != nil {
		s.internalError(w, "list partners", err)
		return
	}
	writeJSON(w, http.StatusOK, partners)
}

func (s *Server) handleGetPartner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return
	}
	partner, err := s.store.getPartner(id)
	if err != nil {
		s.internalError(w, "get partner", err)
		return
	}
	if partner == nil {
		writeDetail(w, http.StatusNotFound, "Parceiro não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, partner)
}

// --- published lessons ---

var mediaTypesByExtension = map[string]string{
	".mp4":  "video",
	".mov":  "video",
	".avi":  "video",
	".mkv":  "video",
	".mp3":  "audio",
	".wav":  "audio",
	".jpg":  "image",
	".jpeg": "image",
	".png":  "image",
	".gif":  "image",
	".pdf":  "document",
}

func (s *Server) handlePublishLesson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeValidation(w, "Formulário inválido")
		return
	}
	user, err := s.store.getUser(authedUserID(r))
	if err != nil {
		s.internalError(w, "get user", err)
		return
	}
	if user == nil || user.Role != api.RoleVolunteer {
		writeDetail(w, http.StatusForbidden, "Apenas voluntários podem publicar aulas")
		return
	}

	subjectID, err := strconv.ParseInt(r.FormValue("subject_id"), 10, 64)
	if err != nil {
		writeValidation(w, "Assunto inválido")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeValidation(w, "Título é obrigatório")
		return
	}
	subject, err := s.store.getSubject(subjectID)
	if err != nil {
		s.internalError(w, "check subject", err)
		return
	}
	if subject == nil {
		writeDetail(w, http.StatusNotFound, "Assunto não encontrado")
		return
	}

	var mediaURL, mediaType string
	file, header, err := r.FormFile("media_file")
	if err == nil {
		defer file.Close()
		ext := strings.ToLower(filepath.Ext(header.Filename))
		kind, ok := mediaTypesByExtension[ext]
		if !ok {
			writeDetail(w, http.StatusBadRequest, "Tipo de arquivo não suportado")
			return
		}
		name := uuid.NewString() + ext
		if err := s.saveUpload(file, name); err != nil {
			s.internalError(w, "save upload", err)
			return
		}
		mediaURL = "/media/" + name
		mediaType = kind
	} else if err != http.ErrMissingFile {
		writeValidation(w, "Arquivo de mídia inválido")
		return
	}

	lesson, err := s.store.createLesson(user.ID, subjectID, title, r.FormValue("description"), mediaURL, mediaType)
	if err != nil {
		s.internalError(w, "create lesson", err)
		return
	}
	s.log.Infof("lesson published id=%d volunteer=%d", lesson.ID, user.ID)
	writeJSON(w, http.StatusCreated, lesson)
}

func (s *Server) saveUpload(src io.Reader, name string) error {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(s.uploadsDir, name))
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	q := lessonQuery{
		SubjectID:   queryInt64Ptr(r, "subject_id"),
		VolunteerID: queryInt64Ptr(r, "volunteer_id"),
		Skip:        queryInt(r, "skip", 0),
		Limit:       queryInt(r, "limit", 20),
	}
	lessons, err := s.store.listLessons(q)
	if err != nil {
		s.internalError(w, "list lessons", err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (s *Server) lookupLesson(w http.ResponseWriter, r *http.Request) *api.PublishedLesson {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, "Identificador inválido")
		return nil
	}
	lesson, err := s.store.getLesson(id)
	if err != nil {
		s.internalError(w, "get lesson", err)
		return nil
	}
	if lesson == nil {
		writeDetail(w, http.StatusNotFound, "Aula não encontrada")
		return nil
	}
	return lesson
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	lesson := s.lookupLesson(w, r)
	if lesson == nil {
		return
	}
	if err := s.store.bumpLessonViews(lesson.ID); err != nil {
		s.internalError(w, "bump lesson views", err)
		return
	}
	lesson.ViewsCount++
	writeJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	lesson := s.lookupLesson(w, r)
	if lesson == nil {
		return
	}
	if lesson.VolunteerID != authedUserID(r) {
		writeDetail(w, http.StatusForbidden, "Sem permissão para editar esta aula")
		return
	}
	var patch api.LessonUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeValidation(w, "Corpo da requisição inválido")
		return
	}
	updated, err := s.store.updateLesson(lesson.ID, patch)
	if err != nil {
		s.internalError(w, "update lesson", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	lesson := s.lookupLesson(w, r)
	if lesson == nil {
		return
	}
	if lesson.VolunteerID != authedUserID(r) {
		writeDetail(w, http.StatusForbidden, "Sem permissão para excluir esta aula")
		return
	}
	if err := s.store.deleteLesson(lesson.ID); err != nil {
		s.internalError(w, "delete lesson", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Aula excluída com sucesso"})
}

func (s *Server) handleLikeLesson(w http.ResponseWriter, r *http.Request) {
	lesson := s.lookupLesson(w, r)
	if lesson == nil {
		return
	}
	likes, err := s.store.likeLesson(lesson.ID)
	if err != nil {
		s.internalError(w, "like lesson", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likes_count": likes})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.db.Ping(); err != nil {
		writeDetail(w, http.StatusServiceUnavailable, fmt.Sprintf("database unavailable: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
