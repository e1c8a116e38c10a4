package domain

// auctionTransitions enumerates every legal status change. Anything not
// listed here is rejected with ErrInvalidTransition.
var auctionTransitions = map[AuctionStatus][]AuctionStatus{
	AuctionDraft:  {AuctionActive, AuctionCancelled},
	AuctionActive: {AuctionEnded, AuctionSold, AuctionSoldBuyNow, AuctionReserveNotMet, AuctionCancelled},
}

// CanTransitionTo reports whether the status change is in the transition table.
func (s AuctionStatus) CanTransitionTo(target AuctionStatus) bool {
	for _, next := range auctionTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s AuctionStatus) IsTerminal() bool {
	return len(auctionTransitions[s]) == 0
}

// ResolveClose computes the terminal status for an active auction reaching
// its natural end: an unmet reserve wins over everything, then a standing
// bidder means sold, otherwise the auction simply ended.
func ResolveClose(a *Auction) AuctionStatus {
	if a.ReservePrice > 0 && a.CurrentPrice < a.ReservePrice {
		return AuctionReserveNotMet
	}
	if a.CurrentBidderID != "" {
		return AuctionSold
	}
	return AuctionEnded
}
