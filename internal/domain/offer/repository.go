package offer

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hubal/internal/domain/roomdesign"
)

// Award is the room design side of an acceptance.
type Award struct {
	RoomDesignID int64
	DesignerID   int64
	OfferID      int64
}

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id int64) (*Offer, error)
	ListByRoomDesign(ctx context.Context, roomDesignID int64) ([]Offer, error)
	ListByDesigner(ctx context.Context, designerID int64) ([]Offer, error)
	HasLive(ctx context.Context, designerID, roomDesignID int64) (bool, error)
	Transition(ctx context.Context, id int64, from, to Status, fields map[string]any, award *Award) error
	HasAccepted(ctx context.Context, customerID, designerID int64) (bool, error)
	RoomDesigns(ctx context.Context, ids []int64) (map[int64]roomdesign.RoomDesign, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Offer, error) {
	var o Offer
	err := r.db.WithContext(ctx).First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferNotFound
	}
	return &o, err
}

func (r *repository) ListByRoomDesign(ctx context.Context, roomDesignID int64) ([]Offer, error) {
	var out []Offer
	err := r.db.WithContext(ctx).
		Where("room_design_id = ?", roomDesignID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) ListByDesigner(ctx context.Context, designerID int64) ([]Offer, error) {
	var out []Offer
	err := r.db.WithContext(ctx).
		Where("designer_id = ?", designerID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) HasLive(ctx context.Context, designerID, roomDesignID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Offer{}).
		Where("designer_id = ? AND room_design_id = ?", designerID, roomDesignID).
		Where("status IN ?", []Status{StatusPending, StatusCounterOffer, StatusAccepted}).
		Count(&count).Error
	return count > 0, err
}

// Transition moves the offer from → to in one transaction. With an award
// the room design moves open → accepted in the same transaction, so two
// offers can never both win a design, and the competing offers that are
// still pending or countered are rejected.
func (r *repository) Transition(ctx context.Context, id int64, from, to Status, fields map[string]any, award *Award) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": to, "updated_at": time.Now()}
		for k, v := range fields {
			updates[k] = v
		}
		res := tx.Model(&Offer{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}

		if award == nil {
			return nil
		}
		err := roomdesign.NewRepository(tx).UpdateStatus(ctx, award.RoomDesignID,
			roomdesign.StatusOpen, roomdesign.StatusAccepted,
			map[string]any{"designer_id": award.DesignerID, "accepted_offer_id": award.OfferID})
		if errors.Is(err, roomdesign.ErrStatusChanged) {
			return ErrDesignNotOpen
		}
		if err != nil {
			return err
		}
		return tx.Model(&Offer{}).
			Where("room_design_id = ? AND id <> ?", award.RoomDesignID, award.OfferID).
			Where("status IN ?", []Status{StatusPending, StatusCounterOffer}).
			Updates(map[string]any{"status": StatusRejected, "updated_at": time.Now()}).Error
	})
}

func (r *repository) HasAccepted(ctx context.Context, customerID, designerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Offer{}).
		Joins("JOIN room_designs ON room_designs.id = design_offers.room_design_id").
		Where("room_designs.user_id = ? AND design_offers.designer_id = ?", customerID, designerID).
		Where("design_offers.status = ?", StatusAccepted).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) RoomDesigns(ctx context.Context, ids []int64) (map[int64]roomdesign.RoomDesign, error) {
	out := make(map[int64]roomdesign.RoomDesign, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var designs []roomdesign.RoomDesign
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&designs).Error; err != nil {
		return nil, err
	}
	for _, d := range designs {
		out[d.ID] = d
	}
	return out, nil
}
