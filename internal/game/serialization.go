package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// ChecksumVersion is bumped whenever the canonical form changes.
const ChecksumVersion = 1

// SerializationChecksum is a deterministic digest of a game state. Two
// states with the same checksum are equal in every field that affects play.
type SerializationChecksum struct {
	Hash      string
	Timestamp string
	Version   int
}

// ComputeChecksum hashes the canonical text form of state.
func ComputeChecksum(state *GameState) (*SerializationChecksum, error) {
	if state == nil {
		return nil, fmt.Errorf("nil game state")
	}
	hash := sha256.New()
	if _, err := hash.Write([]byte(canonicalForm(state))); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &SerializationChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   ChecksumVersion,
	}, nil
}

// Checksum returns only the hash of state, or "" for a nil state.
func Checksum(state *GameState) string {
	sum, err := ComputeChecksum(state)
	if err != nil {
		return ""
	}
	return sum.Hash
}

// VerifyChecksum reports whether state still hashes to expected.
func VerifyChecksum(state *GameState, expected *SerializationChecksum) (bool, error) {
	computed, err := ComputeChecksum(state)
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

func joinCards(list []cards.Card) string {
	parts := make([]string, len(list))
	for i, c := range list {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

func writeTrick(buf *bytes.Buffer, label string, t *rules.Trick) {
	if t == nil {
		return
	}
	fmt.Fprintf(buf, "%s:%d|%d|%d|%s\n", label, t.Leader, t.SittingOut, t.Winner, t.WinnerTeam)
	for i, p := range t.Plays {
		fmt.Fprintf(buf, "  %d:%d=%s\n", i, p.Seat, p.Card)
	}
}

// canonicalForm renders every play-relevant field in a fixed order. Card
// order inside hands and the deck is kept since it is part of the state.
func canonicalForm(state *GameState) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%d|%d|%d|%d|%d\n",
		state.ID,
		state.Threshold,
		state.Dealer,
		state.RoundNumber,
		state.Scores[rules.Team1],
		state.Scores[rules.Team2],
	)

	for i, res := range state.History {
		fmt.Fprintf(&buf, "HISTORY:%d|%d|%s|%d,%d|%d,%d|%t|%s\n",
			i, res.Round, res.Contract,
			res.Tricks[rules.Team1], res.Tricks[rules.Team2],
			res.Points[rules.Team1], res.Points[rules.Team2],
			res.Made, res.Winner,
		)
	}

	if round := state.Round; round != nil {
		fmt.Fprintf(&buf, "ROUND:%d|%d|%d\n", round.Number, round.Dealer, round.SittingOut)
		fmt.Fprintf(&buf, "DECK:%s\n", joinCards(round.Deck))
		for seat, hand := range round.Hands {
			fmt.Fprintf(&buf, "HAND:%d|%s\n", seat, joinCards(hand))
		}
		for _, b := range round.Bids {
			fmt.Fprintf(&buf, "BID:%d=%s\n", b.Seat, b.Bid)
		}
		if round.Contract != nil {
			fmt.Fprintf(&buf, "CONTRACT:%s|%d|%d|%t\n",
				round.Contract.Kind, round.Contract.Tricks, round.Contract.Seat, round.Contract.Forced)
		}
		if round.Trump != nil {
			fmt.Fprintf(&buf, "TRUMP:%s\n", *round.Trump)
		}
		for _, t := range round.Tricks {
			writeTrick(&buf, "TRICK", t)
		}
	}

	fmt.Fprintf(&buf, "PHASE:%s\n", state.CurrentPhase())
	switch p := state.Phase.(type) {
	case *DealingPhase:
		fmt.Fprintf(&buf, "  DEALING:%d\n", p.Round)
	case *BiddingPhase:
		for _, b := range p.Bidding.Bids {
			fmt.Fprintf(&buf, "  PENDING_BID:%d=%s\n", b.Seat, b.Bid)
		}
	case *TrumpSelectionPhase:
		fmt.Fprintf(&buf, "  CHOOSER:%d\n", p.Chooser)
	case *ExchangePhase:
		fmt.Fprintf(&buf, "  EXCHANGE:%d|%d|%s|%s\n",
			p.Exchange.Winner, p.Exchange.Partner,
			joinCards(p.Exchange.WinnerCards), joinCards(p.Exchange.PartnerCards))
	case *TrickPhase:
		fmt.Fprintf(&buf, "  TRICK_NUMBER:%d\n", p.Number)
		writeTrick(&buf, "  CURRENT", p.Trick)
	case *ScoringPhase:
		fmt.Fprintf(&buf, "  RESULT:%d|%d,%d\n", p.Result.Round, p.Result.Points[rules.Team1], p.Result.Points[rules.Team2])
	case *GameOverPhase:
		fmt.Fprintf(&buf, "  WINNER:%s\n", p.Winner)
	}

	return buf.String()
}

// SerializeToBytes gob-encodes state.
func SerializeToBytes(state *GameState) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a state written by SerializeToBytes.
func DeserializeFromBytes(data []byte) (*GameState, error) {
	var state GameState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &state, nil
}

// ValidateSerializationRoundtrip encodes and decodes state and compares
// checksums of both sides.
func ValidateSerializationRoundtrip(state *GameState) error {
	original, err := ComputeChecksum(state)
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := SerializeToBytes(state)
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	decoded, err := DeserializeFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	roundTripped, err := ComputeChecksum(decoded)
	if err != nil {
		return fmt.Errorf("failed to compute deserialized checksum: %w", err)
	}
	if original.Hash != roundTripped.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, deserialized=%s",
			original.Hash, roundTripped.Hash)
	}
	return nil
}
