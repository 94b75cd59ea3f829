package offer

import "errors"

var (
	ErrOfferNotFound     = errors.New("offer not found")
	ErrDesignNotFound    = errors.New("room design not found")
	ErrDesignNotOpen     = errors.New("room design is not open for offers")
	ErrOfferExists       = errors.New("designer already has an offer on this room design")
	ErrSelfOffer         = errors.New("cannot make an offer on your own room design")
	ErrForbidden         = errors.New("not allowed to act on this offer")
	ErrInvalidTransition = errors.New("offer status does not allow this action")
	ErrStatusChanged     = errors.New("offer status changed concurrently")
)
