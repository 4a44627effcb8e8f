package dto

// AddWishlistRequest is the body of POST /core/wishlist/
type AddWishlistRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
}
