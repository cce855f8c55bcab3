// Package transport exposes CommandDispatcher over the wire: a single
// JSON-RPC-style POST endpoint for command/response pairs and a
// WebSocket endpoint that multiplexes the same commands with the
// live event stream (§4.3/§4.4). Neither endpoint encodes any domain
// rule of its own; every request is translated into exactly one
// internal/dispatch.Dispatcher call and its error, if any, is
// translated back through dispatch.Fault.
package transport

import (
	"encoding/json"
	"errors"

	"spacecore/internal/dispatch"
	"spacecore/internal/model"
)

// Request :
// The envelope every inbound command arrives in, whether read from
// the POST body or a WebSocket text frame. `ActorID` is the
// `actor_character_id` named throughout §4.8: the core trusts it
// verbatim, since authenticating the caller and minting that value
// is explicitly out of scope (§1 Non-goals) and left to whatever
// fronts this transport.
type Request struct {
	Command string          `json:"command"`
	ActorID string          `json:"actor_character_id"`
	Params  json.RawMessage `json:"params"`
}

// Response :
// The envelope every reply is wrapped in, whether written as the
// POST response body or a WebSocket text frame.
type Response struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody :
// The wire projection of a dispatch.Fault (§6).
type ErrorBody struct {
	Status int    `json:"status"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

var errUnknownCommand = errors.New("unknown command")

// Handle :
// Executes one request against the dispatcher and returns the
// response envelope to write back to the caller. `subscriptionID`
// is only consulted by the subscription-management commands.
func Handle(d *dispatch.Dispatcher, subscriptionID string, req Request) Response {
	if req.ActorID == "" {
		return errorResponse(&dispatch.Fault{Status: 400, Code: "missing_actor", Detail: "actor_character_id is required"})
	}
	result, err := dispatchCommand(d, req.ActorID, subscriptionID, req)
	if err != nil {
		return errorResponse(err)
	}
	return Response{OK: true, Result: result}
}

func errorResponse(err error) Response {
	var fault *dispatch.Fault
	if errors.As(err, &fault) {
		return Response{Error: &ErrorBody{Status: fault.Status, Code: fault.Code, Detail: fault.Detail}}
	}
	return Response{Error: &ErrorBody{Status: 400, Code: "bad_request", Detail: err.Error()}}
}

func dispatchCommand(d *dispatch.Dispatcher, actorID, subscriptionID string, req Request) (interface{}, error) {
	decode := func(v interface{}) error {
		if len(req.Params) == 0 {
			return nil
		}
		return json.Unmarshal(req.Params, v)
	}

	switch req.Command {
	case "join":
		var p struct {
			CharacterID string `json:"character_id"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.Join(actorID, p.CharacterID)

	case "my_status":
		var p struct {
			CharacterID string `json:"character_id"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.MyStatus(actorID, p.CharacterID)

	case "my_map":
		var p struct {
			CharacterID string `json:"character_id"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.MyMap(actorID, p.CharacterID)

	case "local_map_region":
		var p struct {
			CharacterID  string `json:"character_id"`
			CenterSector string `json:"center_sector"`
			MaxHops      int    `json:"max_hops"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.LocalMapRegion(actorID, p.CharacterID, p.CenterSector, p.MaxHops)

	case "move":
		var p struct {
			CharacterID       string `json:"character_id"`
			DestinationSector string `json:"destination_sector"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.Move(actorID, p.CharacterID, p.DestinationSector)

	case "plot_course":
		var p struct {
			CharacterID string `json:"character_id"`
			From        string `json:"from"`
			To          string `json:"to"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.PlotCourse(actorID, p.CharacterID, p.From, p.To)

	case "trade":
		var p struct {
			CharacterID string `json:"character_id"`
			Commodity   string `json:"commodity"`
			Kind        string `json:"kind"`
			Units       int    `json:"units"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.Trade(actorID, p.CharacterID, p.Commodity, p.Kind, p.Units)

	case "recharge_warp_power":
		var p struct {
			CharacterID string `json:"character_id"`
			Units       int    `json:"units"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.RechargeWarpPower(actorID, p.CharacterID, p.Units)

	case "purchase_fighters":
		var p struct {
			CharacterID string `json:"character_id"`
			Units       int    `json:"units"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.PurchaseFighters(actorID, p.CharacterID, p.Units)

	case "transfer_credits":
		var p struct {
			FromCharacterID string `json:"from_character_id"`
			ToCharacterID   string `json:"to_character_id"`
			Amount          int    `json:"amount"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.TransferCredits(actorID, p.FromCharacterID, p.ToCharacterID, p.Amount)

	case "transfer_warp_power":
		var p struct {
			FromCharacterID string `json:"from_character_id"`
			ToCharacterID   string `json:"to_character_id"`
			Amount          int    `json:"amount"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.TransferWarpPower(actorID, p.FromCharacterID, p.ToCharacterID, p.Amount)

	case "bank_transfer":
		var p struct {
			CharacterID string `json:"character_id"`
			Kind        string `json:"kind"`
			Amount      int    `json:"amount"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.BankTransfer(actorID, p.CharacterID, p.Kind, p.Amount)

	case "dump_cargo":
		var p struct {
			CharacterID string         `json:"character_id"`
			Cargo       map[string]int `json:"cargo"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.DumpCargo(actorID, p.CharacterID, p.Cargo)

	case "salvage_collect":
		var p struct {
			CharacterID string `json:"character_id"`
			SalvageID   string `json:"salvage_id"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.SalvageCollect(actorID, p.CharacterID, p.SalvageID)

	case "combat_initiate":
		var p struct {
			CharacterID string `json:"character_id"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.CombatInitiate(actorID, p.CharacterID)

	case "combat_action":
		var p struct {
			CharacterID string       `json:"character_id"`
			Round       int          `json:"round"`
			Action      model.Action `json:"action"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, d.CombatAction(actorID, p.CharacterID, p.Round, p.Action)

	case "combat_leave_fighters":
		var p struct {
			CharacterID string            `json:"character_id"`
			Quantity    int               `json:"quantity"`
			Mode        model.GarrisonMode `json:"mode"`
			TollAmount  int               `json:"toll_amount"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.CombatLeaveFighters(actorID, p.CharacterID, p.Quantity, p.Mode, p.TollAmount)

	case "combat_collect_fighters":
		var p struct {
			CharacterID string `json:"character_id"`
			Quantity    int    `json:"quantity"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.CombatCollectFighters(actorID, p.CharacterID, p.Quantity)

	case "combat_set_garrison_mode":
		var p struct {
			CharacterID string            `json:"character_id"`
			Mode        model.GarrisonMode `json:"mode"`
			TollAmount  int               `json:"toll_amount"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.CombatSetGarrisonMode(actorID, p.CharacterID, p.Mode, p.TollAmount)

	case "corporation_create":
		var p struct {
			CharacterID string `json:"character_id"`
			Name        string `json:"name"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.CorporationCreate(actorID, p.CharacterID, p.Name)

	case "corporation_join":
		var p struct {
			CharacterID string `json:"character_id"`
			CorpID      string `json:"corp_id"`
			InviteCode  string `json:"invite_code"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, d.CorporationJoin(actorID, p.CharacterID, p.CorpID, p.InviteCode)

	case "corporation_leave":
		var p struct {
			CharacterID string `json:"character_id"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, d.CorporationLeave(actorID, p.CharacterID)

	case "corporation_kick":
		var p struct {
			CharacterID string `json:"character_id"`
			TargetID    string `json:"target_id"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, d.CorporationKick(actorID, p.CharacterID, p.TargetID)

	case "corporation_regenerate_invite_code":
		var p struct {
			CharacterID string `json:"character_id"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.CorporationRegenerateInviteCode(actorID, p.CharacterID)

	case "ship_purchase":
		var p struct {
			CharacterID         string `json:"character_id"`
			ShipType            string `json:"ship_type"`
			ShipName            string `json:"ship_name"`
			ForCorporation      bool   `json:"for_corporation"`
			InitialShipCredits  int    `json:"initial_ship_credits"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.ShipPurchase(actorID, p.CharacterID, p.ShipType, p.ShipName, p.ForCorporation, p.InitialShipCredits)

	case "event_query":
		var p struct {
			SinceSequence int64 `json:"since_sequence"`
			Limit         int   `json:"limit"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return d.EventQuery(actorID, p.SinceSequence, p.Limit)

	case "pause_event_delivery":
		return nil, d.PauseEventDelivery(subscriptionID)

	case "resume_event_delivery":
		return nil, d.ResumeEventDelivery(subscriptionID)

	case "subscribe_my_messages":
		var p struct {
			CharacterID string `json:"character_id"`
			Admin       bool   `json:"admin"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		d.SubscribeMyMessages(subscriptionID, p.CharacterID, p.Admin)
		return struct {
			SubscriptionID string `json:"subscription_id"`
		}{SubscriptionID: subscriptionID}, nil

	case "test_reset":
		var p struct {
			Secret string `json:"admin_password"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, d.TestReset(p.Secret)

	default:
		return nil, errUnknownCommand
	}
}
