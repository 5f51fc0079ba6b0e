package server

import (
	"net/http"

	actiondomain "github.com/clubworks/prestige/internal/action/domain"
	awarddomain "github.com/clubworks/prestige/internal/award/domain"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	"github.com/clubworks/prestige/internal/usercontext"
	"github.com/clubworks/prestige/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type noteBody struct {
	Note string `json:"note"`
}

func (s *Server) ListAwards(c *gin.Context) {
	filter, err := s.awardFilter(c, categorydomain.TypePrestige)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.awardSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateAward(c *gin.Context) {
	var input awarddomain.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	input.VIP = 0
	input.UsableVIP = 0

	award, err := s.awardSvc.Create(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

func (s *Server) GetAward(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	award, err := s.awardSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

func (s *Server) ListAwardActions(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	// GetByID carries the visibility check for non-public awards.
	if _, err := s.awardSvc.GetByID(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	actions, err := s.actionSvc.ListByTarget(c.Request.Context(), actiondomain.TargetAward, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": actions})
}

func (s *Server) UpdateAward(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var input awarddomain.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	input.VIP = 0
	input.UsableVIP = 0

	award, err := s.awardSvc.Update(c.Request.Context(), id, input)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

func (s *Server) RemoveAward(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var body noteBody
	_ = c.ShouldBindJSON(&body)

	award, err := s.awardSvc.Remove(c.Request.Context(), id, body.Note)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

func (s *Server) awardFilter(c *gin.Context, economy categorydomain.Type) (awarddomain.Filter, error) {
	var filter awarddomain.Filter

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		return filter, ErrInvalidRequest
	}

	callerID, _ := usercontext.UserIDFromContext(c.Request.Context())
	userID, err := parseMemberParam(c.Query("user"), callerID)
	if err != nil {
		return filter, err
	}
	nominate, err := parseOptionalInt64(c.Query("nominate"))
	if err != nil {
		return filter, ErrInvalidRequest
	}
	awarder, err := parseOptionalInt64(c.Query("awarder"))
	if err != nil {
		return filter, ErrInvalidRequest
	}

	filter = awarddomain.Filter{
		Status:      c.Query("status"),
		UserID:      userID,
		CategoryID:  parseOptionalSnowflakeID(c.Query("category")),
		DocumentID:  c.Query("document"),
		Source:      c.Query("source"),
		Description: c.Query("description"),
		Nominate:    nominate,
		Awarder:     awarder,
		DateBefore:  parseOptionalTime(c.Query("dateBefore")),
		DateAfter:   parseOptionalTime(c.Query("dateAfter")),
		Economy:     economy,
		Page:        page,
	}
	return filter, nil
}
