package server

import (
	"net/http"

	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	ledgerdomain "github.com/clubworks/prestige/internal/ledger/domain"
	"github.com/clubworks/prestige/internal/usercontext"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type memberInfo struct {
	Prestige        ledgerdomain.Totals    `json:"prestige"`
	VIP             ledgerdomain.VIPTotals `json:"vip"`
	MembershipClass int                    `json:"membership_class"`
}

func (s *Server) GetMemberInfo(c *gin.Context) {
	userID, err := s.memberParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var info memberInfo
	g, gctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		totals, err := s.ledgerSvc.Totals(gctx, userID)
		if err != nil {
			return err
		}
		info.Prestige = totals
		return nil
	})
	g.Go(func() error {
		totals, err := s.ledgerSvc.VIPTotals(gctx, userID)
		if err != nil {
			return err
		}
		info.VIP = totals
		return nil
	})
	g.Go(func() error {
		level, err := s.classSvc.HighestLevel(gctx, userID)
		if err != nil {
			return err
		}
		info.MembershipClass = level
		return nil
	})
	if err := g.Wait(); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (s *Server) ListMemberAwards(c *gin.Context) {
	s.listMemberAwards(c, categorydomain.Type(c.Query("type")))
}

func (s *Server) ListMemberPrestige(c *gin.Context) {
	s.listMemberAwards(c, categorydomain.TypePrestige)
}

func (s *Server) ListMemberVIP(c *gin.Context) {
	s.listMemberAwards(c, categorydomain.TypeVIP)
}

func (s *Server) listMemberAwards(c *gin.Context, economy categorydomain.Type) {
	userID, err := s.memberParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filter, err := s.awardFilter(c, economy)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	filter.UserID = userID

	resp, err := s.awardSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) memberParam(c *gin.Context) (int64, error) {
	callerID, _ := usercontext.UserIDFromContext(c.Request.Context())
	userID, err := parseMemberParam(c.Param("user"), callerID)
	if err != nil {
		return 0, err
	}
	if userID == 0 {
		return 0, ErrInvalidRequest
	}
	return userID, nil
}
