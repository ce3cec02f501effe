package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

type UserLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewUserLogic(ctx context.Context, core *core.Core) *UserLogic {
	return &UserLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

func (l *UserLogic) CreateUser(name, email, avatar string) (*types.User, error) {
	user := types.User{
		ID:     utils.GenSpecIDStr(),
		Name:   name,
		Email:  email,
		Avatar: avatar,
	}

	if err := l.core.Store().UserStore().Create(l.ctx, user); err != nil {
		return nil, errors.New("UserLogic.CreateUser.UserStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &user, nil
}

func (l *UserLogic) GetUser(id string) (*types.User, error) {
	user, err := l.core.Store().UserStore().GetUser(l.ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("UserLogic.GetUser.UserStore.GetUser", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("UserLogic.GetUser.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
	}
	return user, nil
}

func (l *UserLogic) UpdateProfile(name, avatar string) error {
	userID := l.GetUserInfo().User
	if err := l.core.Store().UserStore().UpdateProfile(l.ctx, userID, name, avatar); err != nil {
		return errors.New("UserLogic.UpdateProfile.UserStore.UpdateProfile", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
