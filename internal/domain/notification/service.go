package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hubal/internal/realtime"
)

// ListLimit caps how many notifications a list call returns.
const ListLimit = 50

type Service struct {
	repo      Repository
	publisher realtime.Publisher
}

func NewService(repo Repository, publisher realtime.Publisher) *Service {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher}
}

// Create stores the notification and pushes it to the user's live sessions.
// A failed push does not fail the call; the row is the source of truth.
func (s *Service) Create(ctx context.Context, userID int64, t Type, title, message string, data map[string]any) (*Notification, error) {
	n := &Notification{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		n.Data = raw
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, realtime.UserTopic(userID), realtime.Event{
		Type:    realtime.EventNotificationCreated,
		Payload: n,
	}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("notification_id", n.ID).Msg("failed to publish notification")
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Notification, int64, error) {
	list, err := s.repo.ListByUser(ctx, userID, ListLimit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Cleanup removes read notifications older than retention.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteReadOlderThan(ctx, time.Now().Add(-retention))
}

// RunCleanup repeats Cleanup every interval until ctx is done.
func (s *Service) RunCleanup(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := zerolog.Ctx(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.Cleanup(ctx, retention)
			if err != nil {
				logger.Error().Err(err).Msg("notification cleanup failed")
				continue
			}
			logger.Info().Int64("deleted", deleted).Msg("notification cleanup completed")
		}
	}
}

func (s *Service) NotifyNewOffer(ctx context.Context, customerID, offerID, roomDesignID int64, price float64) error {
	_, err := s.Create(ctx, customerID, TypeNewOffer,
		"عرض جديد",
		fmt.Sprintf("وصلك عرض جديد على تصميمك بقيمة %s ريال", formatPrice(price)),
		map[string]any{"offer_id": offerID, "room_design_id": roomDesignID, "price": price},
	)
	return err
}

func (s *Service) NotifyOfferAccepted(ctx context.Context, designerID, offerID, roomDesignID, conversationID int64) error {
	_, err := s.Create(ctx, designerID, TypeOfferAccepted,
		"تم قبول عرضك",
		"قبل العميل عرضك، يمكنك الآن التواصل معه",
		map[string]any{"offer_id": offerID, "room_design_id": roomDesignID, "conversation_id": conversationID},
	)
	return err
}

func (s *Service) NotifyOfferRejected(ctx context.Context, designerID, offerID, roomDesignID int64) error {
	_, err := s.Create(ctx, designerID, TypeOfferRejected,
		"تم رفض عرضك",
		"رفض العميل عرضك على التصميم",
		map[string]any{"offer_id": offerID, "room_design_id": roomDesignID},
	)
	return err
}

func (s *Service) NotifyCounterOffer(ctx context.Context, customerID, offerID, roomDesignID int64, price float64) error {
	_, err := s.Create(ctx, customerID, TypeCounterOffer,
		"عرض مضاد",
		fmt.Sprintf("أرسل المصمم عرضاً مضاداً بقيمة %s ريال", formatPrice(price)),
		map[string]any{"offer_id": offerID, "room_design_id": roomDesignID, "counter_price": price},
	)
	return err
}

func (s *Service) NotifyCounterOfferAccepted(ctx context.Context, designerID, offerID, roomDesignID, conversationID int64, price float64) error {
	_, err := s.Create(ctx, designerID, TypeCounterOfferAccepted,
		"تم قبول العرض المضاد",
		fmt.Sprintf("قبل العميل عرضك المضاد بقيمة %s ريال", formatPrice(price)),
		map[string]any{"offer_id": offerID, "room_design_id": roomDesignID, "conversation_id": conversationID, "price": price},
	)
	return err
}

func (s *Service) NotifyCounterOfferRejected(ctx context.Context, designerID, offerID, roomDesignID int64) error {
	_, err := s.Create(ctx, designerID, TypeCounterOfferRejected,
		"تم رفض العرض المضاد",
		"رفض العميل عرضك المضاد",
		map[string]any{"offer_id": offerID, "room_design_id": roomDesignID},
	)
	return err
}

func (s *Service) NotifyNewServiceRequest(ctx context.Context, designerID, requestID int64, propertyType, city string) error {
	_, err := s.Create(ctx, designerID, TypeNewServiceRequest,
		"طلب خدمة جديد",
		fmt.Sprintf("لديك طلب جديد (%s) في %s", propertyType, city),
		map[string]any{"service_request_id": requestID},
	)
	return err
}

// NotifyRequestStatus covers accepted, rejected and completed for the
// customer, and cancelled for the designer.
func (s *Service) NotifyRequestStatus(ctx context.Context, userID, requestID int64, status string) error {
	var (
		t       Type
		title   string
		message string
	)
	switch status {
	case "accepted":
		t, title, message = TypeRequestAccepted, "تم قبول طلبك", "قبل المصمم طلبك، يمكنك الآن التواصل معه"
	case "rejected":
		t, title, message = TypeRequestRejected, "تم رفض طلبك", "اعتذر المصمم عن طلبك"
	case "completed":
		t, title, message = TypeRequestCompleted, "اكتمل المشروع", "أنهى المصمم طلبك، شاركنا تقييمك"
	case "cancelled":
		t, title, message = TypeRequestCancelled, "تم إلغاء الطلب", "ألغى العميل طلب الخدمة"
	default:
		return fmt.Errorf("no notification for request status %q", status)
	}

	_, err := s.Create(ctx, userID, t, title, message, map[string]any{"service_request_id": requestID, "status": status})
	return err
}

func (s *Service) NotifyNewReview(ctx context.Context, designerID, reviewID int64, rating int) error {
	_, err := s.Create(ctx, designerID, TypeNewReview,
		"تقييم جديد",
		fmt.Sprintf("حصلت على تقييم جديد: %d من 5", rating),
		map[string]any{"review_id": reviewID, "rating": rating},
	)
	return err
}

func (s *Service) NotifyDesignGenerated(ctx context.Context, customerID, roomDesignID int64) error {
	_, err := s.Create(ctx, customerID, TypeDesignGenerated,
		"تصميمك جاهز",
		"تم إنشاء التصميم المقترح لغرفتك",
		map[string]any{"room_design_id": roomDesignID},
	)
	return err
}

func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.2f", p)
}
