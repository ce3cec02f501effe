package srv

import (
	"net/http"

	"github.com/mikespook/gorbac/v2"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

const (
	RoleOwner  = "role-owner"
	RoleAdmin  = "role-admin"
	RoleMember = "role-member"

	// PermissionManage covers conversation administration: membership, title,
	// deleting other people's messages.
	PermissionManage = "manage"
	// PermissionModerate covers admin actions short of ownership transfer.
	PermissionModerate = "moderate"
	// PermissionSend covers sending and the read path operations.
	PermissionSend = "send"
)

func SetupRBACSrv() *RBACSrv {
	rbac := gorbac.New()

	pManage := gorbac.NewStdPermission(PermissionManage)
	pModerate := gorbac.NewStdPermission(PermissionModerate)
	pSend := gorbac.NewStdPermission(PermissionSend)

	roleOwner := gorbac.NewStdRole(RoleOwner)
	roleOwner.Assign(pManage)

	roleAdmin := gorbac.NewStdRole(RoleAdmin)
	roleAdmin.Assign(pModerate)

	roleMember := gorbac.NewStdRole(RoleMember)
	roleMember.Assign(pSend)

	rbac.Add(roleOwner)
	rbac.Add(roleAdmin)
	rbac.Add(roleMember)

	rbac.SetParent(RoleAdmin, RoleMember)
	rbac.SetParent(RoleOwner, RoleAdmin)

	return &RBACSrv{
		rbac: rbac,
	}
}

type RBACSrv struct {
	rbac *gorbac.RBAC
}

// RoleID maps a participant row to its rbac role.
func RoleID(role types.ParticipantRole) string {
	switch role {
	case types.PARTICIPANT_ROLE_OWNER:
		return RoleOwner
	case types.PARTICIPANT_ROLE_ADMIN:
		return RoleAdmin
	default:
		return RoleMember
	}
}

func (a *RBACSrv) CheckPermission(roleID, permissionID string) bool {
	return a.rbac.IsGranted(roleID, gorbac.NewStdPermission(permissionID), nil)
}

// CheckParticipant verifies a participant's role grants the permission,
// returning the forbidden error the handlers pass straight through.
func (a *RBACSrv) CheckParticipant(participant *types.ConversationParticipant, permissionID string) *errors.CustomizedError {
	if participant == nil {
		return errors.New("RBACSrv.CheckParticipant.nil", i18n.ERROR_NOT_PARTICIPANT, nil).Code(http.StatusForbidden)
	}
	if !a.CheckPermission(RoleID(participant.Role), permissionID) {
		return errors.New("RBACSrv.CheckParticipant.denied", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
	}
	return nil
}
