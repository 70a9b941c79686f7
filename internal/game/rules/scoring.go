package rules

// Fixed contract values.
const (
	HausPoints          = 16
	DoubleHausPoints    = 32
	AceHausPoints       = 12
	DefaultWinThreshold = 64
)

// RoundResult is the scored outcome of one round.
type RoundResult struct {
	Round    int      `json:"round"`
	Contract Contract `json:"contract"`
	Tricks   [2]int   `json:"tricks"`
	Points   [2]int   `json:"points"`
	Made     bool     `json:"made"`
	Winner   Team     `json:"winner"`
}

// contractValue returns the fixed stake of an all-or-nothing contract.
func contractValue(kind ContractKind) int {
	switch kind {
	case ContractHaus:
		return HausPoints
	case ContractDoubleHaus:
		return DoubleHausPoints
	case ContractAceHaus:
		return AceHausPoints
	default:
		return 0
	}
}

// ScoreRound computes both teams' points from the per-team trick counts.
// The opposing team always scores its own tricks. Equal round points go to
// the bidding team.
func ScoreRound(contract Contract, tricks [2]int) RoundResult {
	bidding := contract.Team()
	other := bidding.Other()
	won := tricks[bidding]

	res := RoundResult{Contract: contract, Tricks: tricks}
	if contract.AllOrNothing() {
		stake := contractValue(contract.Kind)
		res.Made = won >= TricksPerRound
		if res.Made {
			res.Points[bidding] = stake
		} else {
			res.Points[bidding] = -stake
		}
	} else {
		res.Made = won >= contract.Tricks
		if res.Made {
			res.Points[bidding] = won
		} else {
			res.Points[bidding] = -contract.Tricks
		}
	}
	res.Points[other] = tricks[other]

	res.Winner = bidding
	if res.Points[other] > res.Points[bidding] {
		res.Winner = other
	}
	return res
}

// GameWinner reports the team that has reached threshold. Team1 is checked
// first, so it wins when both teams cross in the same round.
func GameWinner(scores [2]int, threshold int) (Team, bool) {
	switch {
	case scores[Team1] >= threshold:
		return Team1, true
	case scores[Team2] >= threshold:
		return Team2, true
	default:
		return Team1, false
	}
}
