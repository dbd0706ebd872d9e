package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kanjisync/kanjisync/internal/grading"
	"github.com/kanjisync/kanjisync/internal/subject"
	"github.com/kanjisync/kanjisync/internal/subjectcache"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// SubjectsController serves hydrated subjects, search, sentence lookup and grading.
type SubjectsController struct {
	subjects SubjectReader
}

func NewSubjectsController(subjects SubjectReader) *SubjectsController {
	return &SubjectsController{subjects: subjects}
}

// GetByIDs handles GET /api/subjects?ids=1,2,3
// Missing ids are left out; the rest keep the requested order.
func (sc *SubjectsController) GetByIDs(c *gin.Context) {
	ids, ok := parseIDList(c, "ids")
	if !ok {
		return
	}

	found, err := sc.subjects.GetOrdered(c.Request.Context(), ids)
	if err != nil {
		respondInternalError(c, err, "get subjects")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": found, "total": len(found)})
}

// GetSubject handles GET /api/subjects/:id
func (sc *SubjectsController) GetSubject(c *gin.Context) {
	id, ok := parseSubjectID(c, "id")
	if !ok {
		return
	}

	subj, found, err := sc.subjects.Get(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get subject")
		return
	}
	if !found {
		respondNotFound(c, "subject")
		return
	}
	c.JSON(http.StatusOK, subj)
}

// GetComponents handles GET /api/subjects/:id/components
func (sc *SubjectsController) GetComponents(c *gin.Context) {
	id, ok := parseSubjectID(c, "id")
	if !ok {
		return
	}

	related, err := sc.subjects.Components(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get components")
		return
	}
	if related == nil {
		related = []subject.Subject{}
	}
	c.JSON(http.StatusOK, gin.H{"subjects": related})
}

// GetAmalgamations handles GET /api/subjects/:id/amalgamations
func (sc *SubjectsController) GetAmalgamations(c *gin.Context) {
	id, ok := parseSubjectID(c, "id")
	if !ok {
		return
	}

	related, err := sc.subjects.Amalgamations(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get amalgamations")
		return
	}
	if related == nil {
		related = []subject.Subject{}
	}
	c.JSON(http.StatusOK, gin.H{"subjects": related})
}

// AnswersResponse lists everything grading would accept for a subject.
type AnswersResponse struct {
	SubjectID int64    `json:"subject_id"`
	Meanings  []string `json:"meanings"`
	Readings  []string `json:"readings"`
}

// GetAnswers handles GET /api/subjects/:id/answers
func (sc *SubjectsController) GetAnswers(c *gin.Context) {
	id, ok := parseSubjectID(c, "id")
	if !ok {
		return
	}

	subj, found, err := sc.subjects.Get(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get answers")
		return
	}
	if !found {
		respondNotFound(c, "subject")
		return
	}
	c.JSON(http.StatusOK, AnswersResponse{
		SubjectID: subj.ID,
		Meanings:  subject.AcceptedMeanings(subj),
		Readings:  subject.AcceptedReadings(subj),
	})
}

// Search handles GET /api/subjects/search?q=...&limit=...
// An empty query lists all visible subjects.
func (sc *SubjectsController) Search(c *gin.Context) {
	limit, ok := parseLimit(c, defaultSearchLimit, maxSearchLimit)
	if !ok {
		return
	}
	query := c.Query("q")

	results, err := sc.subjects.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondInternalError(c, err, "search subjects")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"subjects": results,
		"total":    len(results),
	})
}

// LookupRequest is the request body for POST /api/subjects/lookup
type LookupRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// Lookup handles POST /api/subjects/lookup
func (sc *SubjectsController) Lookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	matches, err := sc.subjects.LookupSentence(c.Request.Context(), req.Text)
	if errors.Is(err, subjectcache.ErrLookupUnavailable) {
		respondError(c, http.StatusServiceUnavailable, "lookup_unavailable", err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "lookup sentence")
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": req.Text, "matches": matches})
}

// GradeRequest is the request body for POST /api/subjects/:id/grade
type GradeRequest struct {
	Mode   string `json:"mode" binding:"required,oneof=reading meaning"`
	Answer string `json:"answer"`
}

// GradeResponse is the graded answer.
type GradeResponse struct {
	SubjectID int64          `json:"subject_id"`
	Mode      string         `json:"mode"`
	Status    grading.Status `json:"status"`
	Hint      string         `json:"hint,omitempty"`
	Correct   bool           `json:"correct"`
}

// Grade handles POST /api/subjects/:id/grade
func (sc *SubjectsController) Grade(c *gin.Context) {
	id, ok := parseSubjectID(c, "id")
	if !ok {
		return
	}

	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	subj, found, err := sc.subjects.Get(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "grade answer")
		return
	}
	if !found {
		respondNotFound(c, "subject")
		return
	}

	var result grading.Result
	if req.Mode == "reading" {
		if !subject.HasReading(subj) {
			respondBadRequest(c, "subject has no readings to grade")
			return
		}
		result = grading.GradeReading(req.Answer, subj)
	} else {
		result = grading.GradeMeaning(req.Answer, subj)
	}

	c.JSON(http.StatusOK, GradeResponse{
		SubjectID: subj.ID,
		Mode:      req.Mode,
		Status:    result.Status,
		Hint:      result.Hint,
		Correct:   result.IsCorrect(),
	})
}
