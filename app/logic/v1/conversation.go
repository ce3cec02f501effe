package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/samber/lo"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core/srv"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

type ConversationLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewConversationLogic(ctx context.Context, core *core.Core) *ConversationLogic {
	return &ConversationLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

func (l *ConversationLogic) CreateConversation(convType types.ConversationType, title string, participantIDs []string) (*types.Conversation, error) {
	creator := l.GetUserInfo().User

	members := lo.Uniq(append([]string{creator}, participantIDs...))
	if convType == types.CONVERSATION_TYPE_SINGLE && len(members) != 2 {
		return nil, errors.New("ConversationLogic.CreateConversation.members", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	conversation := types.Conversation{
		ID:      utils.GenSpecIDStr(),
		Type:    convType,
		Title:   title,
		Creator: creator,
	}

	err := l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().ConversationStore().Create(ctx, conversation); err != nil {
			return errors.New("ConversationLogic.CreateConversation.ConversationStore.Create", i18n.ERROR_INTERNAL, err)
		}

		now := types.NowUnix()
		participants := lo.Map(members, func(userID string, _ int) types.ConversationParticipant {
			role := types.PARTICIPANT_ROLE_MEMBER
			if userID == creator {
				role = types.PARTICIPANT_ROLE_OWNER
			}
			return types.ConversationParticipant{
				ConversationID: conversation.ID,
				UserID:         userID,
				Role:           role,
				JoinedAt:       now,
			}
		})

		if err := l.core.Store().ConversationParticipantStore().BatchCreate(ctx, participants); err != nil {
			return errors.New("ConversationLogic.CreateConversation.ParticipantStore.BatchCreate", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

// CheckParticipant resolves membership, mapping missing rows to the not
// participant error the transport layers surface as UNAUTHORIZED.
func (l *ConversationLogic) CheckParticipant(conversationID, userID string) (*types.ConversationParticipant, error) {
	participant, err := l.core.Store().ConversationParticipantStore().GetParticipant(l.ctx, conversationID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("ConversationLogic.CheckParticipant.GetParticipant", i18n.ERROR_NOT_PARTICIPANT, err).Code(http.StatusForbidden)
		}
		return nil, errors.New("ConversationLogic.CheckParticipant.GetParticipant", i18n.ERROR_INTERNAL, err)
	}
	return participant, nil
}

func (l *ConversationLogic) GetConversation(conversationID string) (*types.Conversation, error) {
	conversation, err := l.core.Store().ConversationStore().GetConversation(l.ctx, conversationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("ConversationLogic.GetConversation.ConversationStore.GetConversation", i18n.ERROR_CONVERSATION_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("ConversationLogic.GetConversation.ConversationStore.GetConversation", i18n.ERROR_INTERNAL, err)
	}

	if _, err = l.CheckParticipant(conversationID, l.GetUserInfo().User); err != nil {
		return nil, err
	}

	return conversation, nil
}

func (l *ConversationLogic) ListConversations(convType *types.ConversationType, page, pageSize uint64) ([]types.Conversation, error) {
	list, err := l.core.Store().ConversationStore().List(l.ctx, types.ListConversationOptions{
		UserID: l.GetUserInfo().User,
		Type:   convType,
	}, page, pageSize)
	if err != nil {
		return nil, errors.New("ConversationLogic.ListConversations.ConversationStore.List", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

func (l *ConversationLogic) ListParticipants(conversationID string) ([]types.ConversationParticipant, error) {
	if _, err := l.CheckParticipant(conversationID, l.GetUserInfo().User); err != nil {
		return nil, err
	}

	list, err := l.core.Store().ConversationParticipantStore().ListParticipants(l.ctx, conversationID)
	if err != nil {
		return nil, errors.New("ConversationLogic.ListParticipants.ParticipantStore.ListParticipants", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

func (l *ConversationLogic) AddParticipants(conversationID string, userIDs []string) error {
	operator, err := l.CheckParticipant(conversationID, l.GetUserInfo().User)
	if err != nil {
		return err
	}
	if err := l.core.Srv().RBAC().CheckParticipant(operator, srv.PermissionModerate); err != nil {
		return err
	}

	conversation, err := l.GetConversation(conversationID)
	if err != nil {
		return err
	}
	if conversation.Type == types.CONVERSATION_TYPE_SINGLE {
		return errors.New("ConversationLogic.AddParticipants.single", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}

	existing, err := l.core.Store().ConversationParticipantStore().ListParticipants(l.ctx, conversationID)
	if err != nil {
		return errors.New("ConversationLogic.AddParticipants.ListParticipants", i18n.ERROR_INTERNAL, err)
	}
	existingIDs := lo.Map(existing, func(p types.ConversationParticipant, _ int) string { return p.UserID })

	newcomers := lo.Filter(lo.Uniq(userIDs), func(id string, _ int) bool {
		return !lo.Contains(existingIDs, id)
	})
	if len(newcomers) == 0 {
		return nil
	}

	now := types.NowUnix()
	participants := lo.Map(newcomers, func(userID string, _ int) types.ConversationParticipant {
		return types.ConversationParticipant{
			ConversationID: conversationID,
			UserID:         userID,
			Role:           types.PARTICIPANT_ROLE_MEMBER,
			JoinedAt:       now,
		}
	})

	if err := l.core.Store().ConversationParticipantStore().BatchCreate(l.ctx, participants); err != nil {
		return errors.New("ConversationLogic.AddParticipants.BatchCreate", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *ConversationLogic) RemoveParticipant(conversationID, userID string) error {
	operator := l.GetUserInfo().User
	if operator != userID {
		p, err := l.CheckParticipant(conversationID, operator)
		if err != nil {
			return err
		}
		if err := l.core.Srv().RBAC().CheckParticipant(p, srv.PermissionModerate); err != nil {
			return err
		}
	}

	if err := l.core.Store().ConversationParticipantStore().Delete(l.ctx, conversationID, userID); err != nil {
		return errors.New("ConversationLogic.RemoveParticipant.Delete", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *ConversationLogic) UpdateParticipantRole(conversationID, userID string, role types.ParticipantRole) error {
	operator, err := l.CheckParticipant(conversationID, l.GetUserInfo().User)
	if err != nil {
		return err
	}
	if err := l.core.Srv().RBAC().CheckParticipant(operator, srv.PermissionManage); err != nil {
		return err
	}
	if role == types.PARTICIPANT_ROLE_OWNER {
		return errors.New("ConversationLogic.UpdateParticipantRole.owner", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}

	if err := l.core.Store().ConversationParticipantStore().UpdateRole(l.ctx, conversationID, userID, role); err != nil {
		return errors.New("ConversationLogic.UpdateParticipantRole.UpdateRole", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
