package game

// dealerShouldDraw applies the house drawing rule: hit on 16 or less
// and on soft 17, stand otherwise.
func dealerShouldDraw(dealer *Hand) bool {
	value := dealer.Value()
	if value < 17 {
		return true
	}
	return value == 17 && dealer.Soft()
}
