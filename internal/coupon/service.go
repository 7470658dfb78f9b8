package coupon

import (
	"errors"
	"time"
)

var (
	ErrNotClaimable  = errors.New("coupon is not claimable")
	ErrNotApplicable = errors.New("coupon does not apply to this order")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(onlyActive bool) ([]Coupon, error) {
	return s.repo.List(onlyActive)
}

// Claim grants the coupon to the user when it is active and inside its
// validity window.
func (s *Service) Claim(userID, couponID int) (UserCoupon, error) {
	c, err := s.repo.GetByID(couponID)
	if err != nil {
		return UserCoupon{}, err
	}
	if !withinWindow(c, time.Now().UTC()) {
		return UserCoupon{}, ErrNotClaimable
	}
	return s.repo.Claim(userID, couponID, time.Now().UTC().Format(time.RFC3339))
}

func (s *Service) ListUserCoupons(userID int, status *int) ([]UserCoupon, error) {
	return s.repo.ListUserCoupons(userID, status)
}

// Use spends a user coupon outside of an order, e.g. when redeemed directly.
func (s *Service) Use(userID, userCouponID int) error {
	uc, err := s.repo.GetUserCoupon(userCouponID)
	if err != nil {
		return err
	}
	if uc.UserID != userID {
		return ErrNotFound
	}
	if uc.Status != StatusUnused {
		return ErrAlreadyUsed
	}
	return s.repo.MarkUsed(userCouponID, time.Now().UTC().Format(time.RFC3339))
}

// ValidateForOrder checks that the user coupon can pay against an order of
// the given pre-discount total and returns the discount it grants.
func (s *Service) ValidateForOrder(userID, userCouponID int, total int64) (int64, error) {
	uc, err := s.repo.GetUserCoupon(userCouponID)
	if err != nil {
		return 0, err
	}
	if uc.UserID != userID {
		return 0, ErrNotFound
	}
	if uc.Status != StatusUnused {
		return 0, ErrAlreadyUsed
	}
	if !withinWindow(uc.Coupon, time.Now().UTC()) {
		return 0, ErrNotApplicable
	}
	if total < uc.Coupon.MinAmount {
		return 0, ErrNotApplicable
	}
	return Discount(uc.Coupon, total), nil
}

func withinWindow(c Coupon, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	start, err := time.Parse(time.RFC3339, c.StartTime)
	if err != nil {
		return false
	}
	end, err := time.Parse(time.RFC3339, c.EndTime)
	if err != nil {
		return false
	}
	return !now.Before(start) && !now.After(end)
}
