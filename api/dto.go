/*
dto.go - JSON wire shapes for the admin HTTP surface

PURPOSE:
  Translates engine.ClientAccount into the JSON the admin surface
  returns. Kept separate from engine so the engine package never imports
  encoding/json (it has no business knowing about HTTP).
*/
package api

import "github.com/warp/ledgerd/engine"

// AccountDTO is the JSON shape of one client's account snapshot.
type AccountDTO struct {
	ClientID  uint16 `json:"clientId"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// NewAccountDTO converts an engine.ClientAccount into its wire shape. It
// returns an error if the account's held amount (Total - Available) would
// be negative, mirroring feed.NewOutputRow's guard.
func NewAccountDTO(account engine.ClientAccount) (AccountDTO, error) {
	held, ok := account.Held()
	if !ok {
		return AccountDTO{}, errHeldNegative(account.ClientID)
	}
	return AccountDTO{
		ClientID:  uint16(account.ClientID),
		Available: account.Available.String(),
		Held:      held.String(),
		Total:     account.Total.String(),
		Locked:    account.IsLocked,
	}, nil
}

type heldNegativeError struct {
	clientID engine.ClientID
}

func (e heldNegativeError) Error() string {
	return "client " + e.clientID.String() + ": held amount would be negative"
}

func errHeldNegative(clientID engine.ClientID) error {
	return heldNegativeError{clientID: clientID}
}

// errorDTO is the JSON shape returned for 4xx/5xx responses.
type errorDTO struct {
	Error string `json:"error"`
}
