package devserver

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router wires every route the mobile client calls, plus static serving of
// uploaded lesson media under /media/.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/users/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/users/", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}", s.requireAuth(s.handleUpdateUser)).Methods(http.MethodPut)

	r.HandleFunc("/subjects/", s.handleListSubjects).Methods(http.MethodGet)
	r.HandleFunc("/subjects/{id:[0-9]+}", s.handleGetSubject).Methods(http.MethodGet)

	r.HandleFunc("/forum/topics", s.handleListTopics).Methods(http.MethodGet)
	r.HandleFunc("/forum/topics", s.requireAuth(s.handleCreateTopic)).Methods(http.MethodPost)
	r.HandleFunc("/forum/topics/{id:[0-9]+}", s.handleGetTopic).Methods(http.MethodGet)
	r.HandleFunc("/forum/topics/{id:[0-9]+}", s.requireAuth(s.handleUpdateTopic)).Methods(http.MethodPut)
	r.HandleFunc("/forum/topics/{id:[0-9]+}", s.requireAuth(s.handleDeleteTopic)).Methods(http.MethodDelete)
	r.HandleFunc("/forum/topics/{id:[0-9]+}/replies", s.handleListReplies).Methods(http.MethodGet)
	r.HandleFunc("/forum/replies", s.requireAuth(s.handleCreateReply)).Methods(http.MethodPost)
	r.HandleFunc("/forum/replies/{id:[0-9]+}", s.requireAuth(s.handleUpdateReply)).Methods(http.MethodPut)
	r.HandleFunc("/forum/replies/{id:[0-9]+}", s.requireAuth(s.handleDeleteReply)).Methods(http.MethodDelete)
	r.HandleFunc("/forum/replies/{id:[0-9]+}/like", s.requireAuth(s.handleLikeReply)).Methods(http.MethodPost)
	r.HandleFunc("/forum/replies/{id:[0-9]+}/accept", s.requireAuth(s.handleAcceptReply)).Methods(http.MethodPost)

	r.HandleFunc("/news/", s.handleListNews).Methods(http.MethodGet)
	r.HandleFunc("/news/", s.requireAuth(s.handleCreateNews)).Methods(http.MethodPost)
	r.HandleFunc("/news/{id:[0-9]+}", s.handleGetNews).Methods(http.MethodGet)
	r.HandleFunc("/news/{id:[0-9]+}", s.requireAuth(s.handleDeleteNews)).Methods(http.MethodDelete)

	r.HandleFunc("/partners/", s.handleListPartners).Methods(http.MethodGet)
	r.HandleFunc("/partners/{id:[0-9]+}", s.handleGetPartner).Methods(http.MethodGet)

	r.HandleFunc("/published-lessons/", s.handleListLessons).Methods(http.MethodGet)
	r.HandleFunc("/published-lessons/", s.requireAuth(s.handlePublishLesson)).Methods(http.MethodPost)
	r.HandleFunc("/published-lessons/{id:[0-9]+}", s.handleGetLesson).Methods(http.MethodGet)
	r.HandleFunc("/published-lessons/{id:[0-9]+}", s.requireAuth(s.handleUpdateLesson)).Methods(http.MethodPut)
	r.HandleFunc("/published-lessons/{id:[0-9]+}", s.requireAuth(s.handleDeleteLesson)).Methods(http.MethodDelete)
	r.HandleFunc("/published-lessons/{id:[0-9]+}/like", s.requireAuth(s.handleLikeLesson)).Methods(http.MethodPost)

	r.PathPrefix("/media/").Handler(
		http.StripPrefix("/media/", http.FileServer(http.Dir(s.uploadsDir))),
	)

	r.Use(s.logRequests)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Infof("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
