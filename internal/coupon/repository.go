package coupon

import (
	"errors"
	"sync"
)

var (
	ErrNotFound       = errors.New("coupon not found")
	ErrAlreadyClaimed = errors.New("coupon already claimed")
	ErrAlreadyUsed    = errors.New("coupon already used")
)

type Repository interface {
	List(onlyActive bool) ([]Coupon, error)
	GetByID(id int) (Coupon, error)
	Claim(userID, couponID int, claimedAt string) (UserCoupon, error)
	ListUserCoupons(userID int, status *int) ([]UserCoupon, error)
	GetUserCoupon(id int) (UserCoupon, error)
	MarkUsed(id int, usedAt string) error
}

type InMemoryRepository struct {
	mu          sync.Mutex
	coupons     []Coupon
	userCoupons []UserCoupon
	nextID      int
}

func NewInMemoryRepository(seed []Coupon) *InMemoryRepository {
	return &InMemoryRepository{coupons: append([]Coupon(nil), seed...), nextID: 1}
}

func (r *InMemoryRepository) List(onlyActive bool) ([]Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Coupon, 0)
	for _, c := range r.coupons {
		if onlyActive && !c.IsActive {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (r *InMemoryRepository) GetByID(id int) (Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getCouponLocked(id)
}

func (r *InMemoryRepository) Claim(userID, couponID int, claimedAt string) (UserCoupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.getCouponLocked(couponID)
	if err != nil {
		return UserCoupon{}, err
	}
	for _, uc := range r.userCoupons {
		if uc.UserID == userID && uc.CouponID == couponID {
			return UserCoupon{}, ErrAlreadyClaimed
		}
	}

	uc := UserCoupon{
		ID:        r.nextID,
		UserID:    userID,
		CouponID:  couponID,
		Status:    StatusUnused,
		ClaimedAt: claimedAt,
		Coupon:    c,
	}
	r.nextID++
	r.userCoupons = append(r.userCoupons, uc)
	return uc, nil
}

func (r *InMemoryRepository) ListUserCoupons(userID int, status *int) ([]UserCoupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]UserCoupon, 0)
	for _, uc := range r.userCoupons {
		if uc.UserID != userID {
			continue
		}
		if status != nil && uc.Status != *status {
			continue
		}
		result = append(result, uc)
	}
	return result, nil
}

func (r *InMemoryRepository) GetUserCoupon(id int) (UserCoupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, uc := range r.userCoupons {
		if uc.ID == id {
			return uc, nil
		}
	}
	return UserCoupon{}, ErrNotFound
}

func (r *InMemoryRepository) MarkUsed(id int, usedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, uc := range r.userCoupons {
		if uc.ID == id {
			if uc.Status != StatusUnused {
				return ErrAlreadyUsed
			}
			uc.Status = StatusUsed
			uc.UsedAt = usedAt
			r.userCoupons[i] = uc
			return nil
		}
	}
	return ErrNotFound
}

// AddCoupon registers another coupon definition after construction.
func (r *InMemoryRepository) AddCoupon(c Coupon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coupons = append(r.coupons, c)
}

func (r *InMemoryRepository) getCouponLocked(id int) (Coupon, error) {
	for _, c := range r.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}
