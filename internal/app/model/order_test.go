package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("Pending Approval")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPendingApproval, status)

	_, err = ParseOrderStatus("Shipped")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)

	_, err = ParseOrderStatus("processing")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusProcessing, OrderStatusCompleted, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusPendingApproval, false},
		{OrderStatusPendingApproval, OrderStatusCompleted, true},
		{OrderStatusPendingApproval, OrderStatusProcessing, true},
		{OrderStatusCashOnDelivery, OrderStatusProcessing, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusProcessing, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestItemRef_Validate(t *testing.T) {
	assert.NoError(t, ProductRef(1).Validate())
	assert.NoError(t, TravelPackageRef(3).Validate())
	assert.ErrorIs(t, CourseRef(0).Validate(), ErrInvalidItemRef)
	assert.ErrorIs(t, ItemRef{Type: "blog", ID: 1}.Validate(), ErrInvalidItemRef)

	assert.True(t, CourseRef(1).Reviewable())
	assert.False(t, TravelPackageRef(1).Reviewable())
	assert.False(t, ProductRef(1).QuantityPinned())
	assert.True(t, CourseRef(1).QuantityPinned())
}

func TestParseItemType(t *testing.T) {
	itemType, err := ParseItemType("Course")
	require.NoError(t, err)
	assert.Equal(t, ItemTypeCourse, itemType)

	itemType, err = ParseItemType("travel_package")
	require.NoError(t, err)
	assert.Equal(t, ItemTypeTravelPackage, itemType)

	_, err = ParseItemType("lesson")
	assert.ErrorIs(t, err, ErrInvalidItemRef)
}
