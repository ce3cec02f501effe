package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/logic/v1"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/response"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

type CreateUserRequest struct {
	Name   string `json:"name" form:"name" binding:"required"`
	Email  string `json:"email" form:"email"`
	Avatar string `json:"avatar" form:"avatar"`
}

func (s *HttpSrv) CreateUser(c *gin.Context) {
	var (
		err error
		req CreateUserRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	user, err := v1.NewUserLogic(c, s.Core).CreateUser(req.Name, req.Email, req.Avatar)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, user)
}

func (s *HttpSrv) GetUser(c *gin.Context) {
	userID := c.Param("userid")
	if userID == "" {
		claims, _ := v1.InjectTokenClaim(c)
		userID = claims.User
	}

	user, err := v1.NewUserLogic(c, s.Core).GetUser(userID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, user)
}

type UpdateUserProfileRequest struct {
	Name   string `json:"name" form:"name" binding:"required"`
	Avatar string `json:"avatar" form:"avatar"`
}

func (s *HttpSrv) UpdateUserProfile(c *gin.Context) {
	var (
		err error
		req UpdateUserProfileRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err = v1.NewUserLogic(c, s.Core).UpdateProfile(req.Name, req.Avatar); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type IssueCredentialsRequest struct {
	UserID string `json:"user_id" form:"user_id" binding:"required"`
	Info   string `json:"info" form:"info"`
}

// IssueCredentials exchanges a user id for an API access token and a
// websocket connection token. Account verification happens upstream.
func (s *HttpSrv) IssueCredentials(c *gin.Context) {
	var (
		err error
		req IssueCredentialsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	credentials, err := v1.NewAuthLogic(c, s.Core).IssueCredentials(req.UserID, req.Info)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, credentials)
}

func (s *HttpSrv) RevokeTokens(c *gin.Context) {
	claims, _ := v1.InjectTokenClaim(c)
	if err := v1.NewAuthLogic(c, s.Core).RevokeUserTokens(claims.User); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) GetOfflineBacklogCount(c *gin.Context) {
	claims, _ := v1.InjectTokenClaim(c)
	count, err := v1.NewOfflineLogic(c, s.Core).PendingCount(claims.User)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"count": count})
}
