package project

import (
	"errors"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/asaskevich/govalidator"
)

// TaskFields holds optional task attributes. Nil fields are left unchanged
// on update and defaulted on create. A GroupID pointing at "" removes the
// task from its group.
type TaskFields struct {
	Name          *string `json:"name,omitempty"`
	StartDayIndex *int    `json:"startDayIndex,omitempty"`
	DurationDays  *int    `json:"durationDays,omitempty"`
	GroupID       *string `json:"groupId,omitempty"`
	Color         *string `json:"color,omitempty"`
}

// schedulingChange reports whether applying f can move any bar.
func (f TaskFields) schedulingChange() bool {
	return f.StartDayIndex != nil || f.DurationDays != nil
}

func (f TaskFields) validate(caller string) error {
	if f.DurationDays != nil && *f.DurationDays < 1 {
		return invalid(goerrors.ErrValidation{
			Caller: caller,
			Issue: goerrors.ErrNegativeInput{
				InputName: "durationDays",
			},
		})
	}

	if f.Color != nil && !govalidator.IsHexcolor(*f.Color) {
		return invalid(goerrors.ErrInvalidInput{
			Caller:     caller,
			InputName:  "color",
			InputValue: *f.Color,
			Issue:      errors.New("expected a hex colour such as #93B5F7"),
		})
	}

	return nil
}

// GroupFields holds optional group attributes.
type GroupFields struct {
	Name      *string `json:"name,omitempty"`
	Collapsed *bool   `json:"collapsed,omitempty"`
}

// ProjectFields holds optional project attributes.
type ProjectFields struct {
	Name  *string `json:"name,omitempty"`
	Epoch *string `json:"epoch,omitempty"`
}

func (f ProjectFields) validate(caller string) error {
	if f.Name != nil && govalidator.IsNull(*f.Name) {
		return invalid(goerrors.ErrValidation{
			Caller: caller,
			Issue: goerrors.ErrNilInput{
				InputName: "name",
			},
		})
	}

	if f.Epoch != nil && !govalidator.IsTime(*f.Epoch, "2006-01-02") {
		return invalid(goerrors.ErrInvalidInput{
			Caller:     caller,
			InputName:  "epoch",
			InputValue: *f.Epoch,
			Issue:      errors.New("expected a YYYY-MM-DD date"),
		})
	}

	return nil
}
