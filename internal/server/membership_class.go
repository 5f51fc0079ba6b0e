package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	actiondomain "github.com/clubworks/prestige/internal/action/domain"
	mcdomain "github.com/clubworks/prestige/internal/membershipclass/domain"
	"github.com/clubworks/prestige/internal/usercontext"
	"github.com/clubworks/prestige/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

// classSummary is the restricted listing shape: the totals snapshot, review
// stage and deciding office stay private to the detail endpoint.
type classSummary struct {
	ID     snowflake.ID    `json:"id"`
	UserID int64           `json:"user"`
	Date   time.Time       `json:"date"`
	Level  int             `json:"level"`
	Status mcdomain.Status `json:"status"`
}

func (s *Server) ListClasses(c *gin.Context) {
	filter, err := s.classFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.classSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summaries := make([]classSummary, 0, len(resp.Classes))
	for _, class := range resp.Classes {
		summaries = append(summaries, classSummary{
			ID:     class.ID,
			UserID: class.UserID,
			Date:   class.Date,
			Level:  class.Level,
			Status: class.Status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": summaries, "page": resp.Page})
}

func (s *Server) GetLevels(c *gin.Context) {
	c.JSON(http.StatusOK, s.classSvc.Levels())
}

func (s *Server) GetClass(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	class, err := s.classSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (s *Server) ListClassActions(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	// GetByID carries the visibility check for unapproved reviews.
	if _, err := s.classSvc.GetByID(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	actions, err := s.actionSvc.ListByTarget(c.Request.Context(), actiondomain.TargetMembershipClass, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": actions})
}

func (s *Server) CreateClass(c *gin.Context) {
	callerID, _ := usercontext.UserIDFromContext(c.Request.Context())

	userID, err := parseMemberParam(c.Query("user"), callerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if userID == 0 {
		userID = callerID
	}
	level, err := parseOptionalInt(c.Query("level"))
	if err != nil || level == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	class, err := s.classSvc.Create(c.Request.Context(), userID, level)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (s *Server) ApproveClass(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var body noteBody
	_ = c.ShouldBindJSON(&body)

	class, err := s.classSvc.Approve(c.Request.Context(), id, c.Query("stage"), body.Note)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (s *Server) RemoveClass(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var body noteBody
	_ = c.ShouldBindJSON(&body)

	class, err := s.classSvc.Remove(c.Request.Context(), id, body.Note)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (s *Server) classFilter(c *gin.Context) (mcdomain.Filter, error) {
	var filter mcdomain.Filter

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		return filter, ErrInvalidRequest
	}

	callerID, _ := usercontext.UserIDFromContext(c.Request.Context())
	userID, err := parseMemberParam(c.Query("user"), callerID)
	if err != nil {
		return filter, err
	}
	level, err := parseOptionalInt(c.Query("level"))
	if err != nil {
		return filter, ErrInvalidRequest
	}
	office, err := parseOptionalInt64(c.Query("office"))
	if err != nil {
		return filter, ErrInvalidRequest
	}

	filter = mcdomain.Filter{
		Status:     c.Query("status"),
		UserID:     userID,
		Level:      level,
		Office:     office,
		DateBefore: parseOptionalTime(c.Query("dateBefore")),
		DateAfter:  parseOptionalTime(c.Query("dateAfter")),
		Page:       page,
	}
	return filter, nil
}
