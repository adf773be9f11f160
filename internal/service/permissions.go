package service

import (
	"github.com/tvsaude/auth-service/models"
)

// PermissionModel is a static table mapping action identifiers to the set
// of permission levels authorized to perform them. The four levels form an
// implicit hierarchy by convention, but the model does no hierarchy
// inference: each action enumerates every allowed level explicitly.
type PermissionModel struct {
	actions map[string]map[models.PermissionLevel]struct{}
}

// defaultActionTable enumerates the protected surface of the TV Saúde
// dashboard. Action names follow the "resource:verb" convention used by the
// API layer.
var defaultActionTable = map[string][]models.PermissionLevel{
	"videos:view":          {models.LevelSuperAdmin, models.LevelAdmin, models.LevelOperator, models.LevelViewer},
	"videos:create":        {models.LevelSuperAdmin, models.LevelAdmin, models.LevelOperator},
	"videos:update":        {models.LevelSuperAdmin, models.LevelAdmin, models.LevelOperator},
	"videos:delete":        {models.LevelSuperAdmin},
	"playlists:view":       {models.LevelSuperAdmin, models.LevelAdmin, models.LevelOperator, models.LevelViewer},
	"playlists:manage":     {models.LevelSuperAdmin, models.LevelAdmin, models.LevelOperator},
	"announcements:manage": {models.LevelSuperAdmin, models.LevelAdmin, models.LevelOperator},
	"locations:manage":     {models.LevelSuperAdmin, models.LevelAdmin},
	"devices:control":      {models.LevelSuperAdmin, models.LevelAdmin, models.LevelOperator},
	"users:manage":         {models.LevelSuperAdmin, models.LevelAdmin},
	"audit:view":           {models.LevelSuperAdmin, models.LevelAdmin},
	"system:backup":        {models.LevelSuperAdmin},
}

// NewPermissionModel builds the model from the default action table.
func NewPermissionModel() *PermissionModel {
	return newPermissionModel(defaultActionTable)
}

func newPermissionModel(table map[string][]models.PermissionLevel) *PermissionModel {
	actions := make(map[string]map[models.PermissionLevel]struct{}, len(table))
	for action, levels := range table {
		set := make(map[models.PermissionLevel]struct{}, len(levels))
		for _, level := range levels {
			set[level] = struct{}{}
		}
		actions[action] = set
	}

	return &PermissionModel{actions: actions}
}

// IsAuthorized reports whether level may perform action. Returns
// [ErrUnknownAction] if the action is not registered in the table.
func (m *PermissionModel) IsAuthorized(level models.PermissionLevel, action string) (bool, error) {
	set, ok := m.actions[action]
	if !ok {
		return false, ErrUnknownAction
	}

	_, allowed := set[level]
	return allowed, nil
}
