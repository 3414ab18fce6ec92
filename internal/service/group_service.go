package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/spendboard/internal/calculator"
	"github.com/mmynk/spendboard/internal/currency"
	"github.com/mmynk/spendboard/internal/models"
	"github.com/mmynk/spendboard/internal/storage"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group. Groups may be created with only a member
// count; balances then use placeholder members.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	msg := req.Msg
	slog.Info("CreateGroup request received",
		"name", msg.Name,
		"members_count", len(msg.Members),
	)

	name := strings.TrimSpace(msg.Name)
	if name == "" {
		return nil, invalid("name required")
	}
	if msg.MembersCount < 0 || msg.MembersTarget < 0 {
		return nil, invalid("member counts must not be negative")
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Currency))
	if code != "" && !currency.Valid(code) {
		return nil, invalid("unknown currency " + msg.Currency)
	}

	members := make([]models.Member, 0, len(msg.Members))
	for _, m := range msg.Members {
		if m.UID == "" && strings.TrimSpace(m.Name) == "" {
			return nil, invalid("members need a uid or a name")
		}
		members = append(members, models.Member{UID: m.UID, Name: strings.TrimSpace(m.Name), Email: m.Email})
	}

	group := &models.Group{
		Name:          name,
		Type:          parseGroupType(msg.Type),
		Currency:      code,
		Members:       members,
		MembersCount:  msg.MembersCount,
		MembersTarget: msg.MembersTarget,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "resolved_members", len(calculator.ResolveMembers(*group)))

	return connect.NewResponse(&CreateGroupResponse{Group: toGroup(*group)}), nil
}

func parseGroupType(s string) models.GroupType {
	switch t := models.GroupType(strings.ToLower(s)); t {
	case models.GroupTrip, models.GroupHousehold, models.GroupCouple, models.GroupFriends:
		return t
	default:
		return models.GroupOther
	}
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&GetGroupResponse{Group: toGroup(*group)}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&ListGroupsResponse{Groups: out}), nil
}

// DeleteGroup removes a group by ID. Its expenses become personal.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&DeleteGroupResponse{}), nil
}
