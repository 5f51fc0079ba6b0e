package server

import (
	"net/http"

	awarddomain "github.com/clubworks/prestige/internal/award/domain"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListVIPAwards(c *gin.Context) {
	filter, err := s.awardFilter(c, categorydomain.TypeVIP)
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

func (s *Server) CreateVIPAward(c *gin.Context) {
	var input awarddomain.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	clearPrestigePoints(&input)

	award, err := s.awardSvc.Create(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

func (s *Server) UpdateVIPAward(c *gin.Context) {
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
	clearPrestigePoints(&input)

	award, err := s.awardSvc.Update(c.Request.Context(), id, input)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

// clearPrestigePoints keeps the vip endpoints inside the vip economy.
func clearPrestigePoints(input *awarddomain.Input) {
	input.General = 0
	input.Regional = 0
	input.National = 0
	input.UsableGeneral = 0
	input.UsableRegional = 0
	input.UsableNational = 0
}
