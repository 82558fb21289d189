package factory

import (
	"fmt"

	"github.com/tendermint/lightivc/crypto/ed25519"
	"github.com/tendermint/lightivc/types"
)

// Validator returns a validator with a fresh key and the given voting power.
func Validator(votingPower int64) (*types.Validator, ed25519.PrivKey) {
	privKey := ed25519.GenPrivKey()
	return types.NewValidator(privKey.PubKey().(ed25519.PubKey), votingPower), privKey
}

// DeterministicValidator derives the validator key from seed.
func DeterministicValidator(seed string, votingPower int64) (*types.Validator, ed25519.PrivKey) {
	privKey := ed25519.GenPrivKeyFromSecret([]byte(seed))
	return types.NewValidator(privKey.PubKey().(ed25519.PubKey), votingPower), privKey
}

// ValidatorSet returns a set of numValidators validators of equal power and
// their private keys, ordered like the set.
func ValidatorSet(numValidators int, votingPower int64) (*types.ValidatorSet, []ed25519.PrivKey) {
	valz := make([]*types.Validator, numValidators)
	keys := make([]ed25519.PrivKey, numValidators)
	for i := 0; i < numValidators; i++ {
		valz[i], keys[i] = Validator(votingPower)
	}
	vals := types.NewValidatorSet(valz)
	return vals, orderKeys(vals, keys)
}

// DeterministicValidatorSet is ValidatorSet with keys derived from prefix.
func DeterministicValidatorSet(prefix string, numValidators int, votingPower int64) (*types.ValidatorSet, []ed25519.PrivKey) {
	valz := make([]*types.Validator, numValidators)
	keys := make([]ed25519.PrivKey, numValidators)
	for i := 0; i < numValidators; i++ {
		valz[i], keys[i] = DeterministicValidator(fmt.Sprintf("%s-%d", prefix, i), votingPower)
	}
	vals := types.NewValidatorSet(valz)
	return vals, orderKeys(vals, keys)
}

// orderKeys returns keys in validator set order.
func orderKeys(vals *types.ValidatorSet, keys []ed25519.PrivKey) []ed25519.PrivKey {
	byAddr := make(map[string]ed25519.PrivKey, len(keys))
	for _, k := range keys {
		byAddr[string(k.PubKey().Address())] = k
	}
	ordered := make([]ed25519.PrivKey, 0, vals.Size())
	for _, val := range vals.Validators {
		k, ok := byAddr[string(val.Address)]
		if !ok {
			panic(fmt.Sprintf("no key for validator %v", val.Address))
		}
		ordered = append(ordered, k)
	}
	return ordered
}
