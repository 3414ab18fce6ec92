package calculator

import (
	"fmt"
	"strconv"

	"github.com/mmynk/spendboard/internal/models"
)

// EqualShare returns one member's portion of amount split equally.
// Only equal splits are computed; exact and weighted split types are
// recorded on expenses but settle as equal.
func EqualShare(amount float64, members int) (float64, error) {
	if members <= 0 {
		return 0, fmt.Errorf("must have at least one member")
	}
	return amount / float64(members), nil
}

// ResolveMembers returns the group's members, or synthetic placeholders when
// only a member count is known. Placeholders exist for balance display and
// are never persisted.
func ResolveMembers(group models.Group) []models.Member {
	if len(group.Members) > 0 {
		return group.Members
	}

	n := group.MembersCount
	if n <= 0 {
		n = group.MembersTarget
	}
	if n <= 0 {
		return nil
	}

	members := make([]models.Member, n)
	for i := range members {
		members[i] = models.Member{
			UID:  "placeholder-" + group.ID + "-" + strconv.Itoa(i+1),
			Name: "Member " + strconv.Itoa(i+1),
		}
	}
	return members
}
