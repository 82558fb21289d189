package ivc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/ivc"
	"github.com/tendermint/lightivc/ivc/mocks"
	"github.com/tendermint/lightivc/libs/bincode"
	"github.com/tendermint/lightivc/libs/log"
	"github.com/tendermint/lightivc/types"
	"github.com/tendermint/lightivc/zkvm"
)

var testVKey = types.VerifyingKeyID{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

// testHeader is a header whose hash is the hash of its name.
type testHeader struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
}

func (h *testHeader) Digest() types.Digest { return types.DigestOf([]byte(h.Name)) }
func (h *testHeader) Timestamp() time.Time { return h.Time }

func decodeTestHeader(data []byte) (types.ChainHeader, error) {
	var h *testHeader
	if err := types.UnmarshalCBOR(data, &h); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, types.ErrNullHeader
	}
	return h, nil
}

func header(name string) *testHeader {
	return &testHeader{Name: name, Time: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// newStrategy returns a strategy that accepts every transition unless told
// otherwise.
func newStrategy(t *testing.T, verifyErr error) *mocks.Strategy {
	s := mocks.NewStrategy(t)
	s.On("Name").Return("test").Maybe()
	s.On("DecodeHeader", mock.Anything).Return(
		func(data []byte) types.ChainHeader {
			h, _ := decodeTestHeader(data)
			return h
		},
		func(data []byte) error {
			_, err := decodeTestHeader(data)
			return err
		},
	).Maybe()
	s.On("VerifyTransition", mock.Anything, mock.Anything, mock.Anything).Return(verifyErr).Maybe()
	return s
}

func previousValues(genesis, head types.ChainHeader, ok bool) []byte {
	return types.PublicValues{
		VKeyHash:    testVKey.Hash(),
		GenesisHash: genesis.Digest(),
		HeadHash:    head.Digest(),
		OK:          ok,
	}.Bytes()
}

func tape(t *testing.T, vkey types.VerifyingKeyID, prev []byte, genesis types.Digest,
	transition types.Transition, head types.ChainHeader) *zkvm.Env {
	t.Helper()
	stdin := zkvm.NewStdin()
	require.NoError(t, ivc.WriteInput(stdin, vkey, prev, genesis, transition, head))
	return zkvm.NewEnv(stdin)
}

func TestGenesisStepCommits(t *testing.T) {
	g := header("genesis")
	strategy := newStrategy(t, nil)
	prog := ivc.NewProgram(strategy, mocks.NewPrecompile(t), ivc.WithLogger(log.TestingLogger()))

	env := tape(t, testVKey, nil, g.Digest(), types.Genesis{}, g)
	out, err := prog.Step(env)
	require.NoError(t, err)

	assert.True(t, out.OK())
	assert.NoError(t, out.Failure)
	assert.Equal(t, types.Genesis{}, out.Transition)
	assert.Equal(t, types.PublicValues{
		VKeyHash:    testVKey.Hash(),
		GenesisHash: g.Digest(),
		HeadHash:    g.Digest(),
		OK:          true,
	}, out.PublicValues)
	assert.Equal(t, out.PublicValues.Bytes(), env.PublicValues())
	assert.Len(t, env.PublicValues(), types.PublicValuesSize)
	strategy.AssertCalled(t, "VerifyTransition", types.Genesis{},
		mock.MatchedBy(func(h types.ChainHeader) bool { return h.Digest() == g.Digest() }), g.Digest())
}

func TestGenesisStepIgnoresPreviousValues(t *testing.T) {
	g := header("genesis")
	prog := ivc.NewProgram(newStrategy(t, nil), mocks.NewPrecompile(t))

	env := tape(t, testVKey, []byte("not public values"), g.Digest(), types.Genesis{}, g)
	out, err := prog.Step(env)
	require.NoError(t, err)
	assert.True(t, out.OK())
}

func TestVerificationFailureCommitsFalse(t *testing.T) {
	g, h1 := header("genesis"), header("h1")
	reason := errors.New("bad signatures")
	prog := ivc.NewProgram(newStrategy(t, reason), mocks.NewPrecompile(t))

	// genesis
	env := tape(t, testVKey, nil, g.Digest(), types.Genesis{}, g)
	out, err := prog.Step(env)
	require.NoError(t, err)
	assert.False(t, out.OK())
	assert.Equal(t, g.Digest(), out.PublicValues.HeadHash)

	// continuation
	prev := previousValues(g, g, true)
	pc := mocks.NewPrecompile(t)
	pc.On("VerifyProof", testVKey, types.DigestOf(prev)).Return(nil).Once()
	prog = ivc.NewProgram(newStrategy(t, reason), pc)

	env = tape(t, testVKey, prev, g.Digest(), types.Continuation{Prior: g}, h1)
	out, err = prog.Step(env)
	require.NoError(t, err)
	assert.False(t, out.OK())
	assert.Equal(t, h1.Digest(), out.PublicValues.HeadHash)
	assert.Equal(t, out.PublicValues.Bytes(), env.PublicValues())

	var verr ivc.VerificationError
	require.True(t, errors.As(out.Failure, &verr), "got %v", out.Failure)
	assert.True(t, errors.Is(out.Failure, reason))
}

func TestContinuationChecks(t *testing.T) {
	g, h1, h2 := header("genesis"), header("h1"), header("h2")
	otherVKey := testVKey
	otherVKey[3]++

	testCases := []struct {
		name    string
		vkey    types.VerifyingKeyID
		prev    []byte
		genesis types.Digest
		prior   types.ChainHeader
		check   ivc.Check
	}{
		{"vkey tampered", otherVKey, previousValues(g, h1, true), g.Digest(), h1, ivc.CheckVKeyHash},
		{"other genesis", testVKey, previousValues(g, h1, true), h2.Digest(), h1, ivc.CheckGenesisHash},
		{"prior is not previous head", testVKey, previousValues(g, h1, true), g.Digest(), g, ivc.CheckHeadHash},
		{"previous step failed", testVKey, previousValues(g, h1, false), g.Digest(), h1, ivc.CheckPriorOK},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			strategy := newStrategy(t, nil)
			pc := mocks.NewPrecompile(t)
			prog := ivc.NewProgram(strategy, pc)

			env := tape(t, tc.vkey, tc.prev, tc.genesis, types.Continuation{Prior: tc.prior}, h2)
			out, err := prog.Step(env)
			require.NoError(t, err)

			assert.False(t, out.OK())
			var cerr ivc.ConsistencyError
			require.True(t, errors.As(out.Failure, &cerr), "got %v", out.Failure)
			assert.Equal(t, tc.check, cerr.Check)

			// the step still commits, with its own inputs
			assert.Equal(t, types.PublicValues{
				VKeyHash:    tc.vkey.Hash(),
				GenesisHash: tc.genesis,
				HeadHash:    h2.Digest(),
				OK:          false,
			}, out.PublicValues)
			assert.Equal(t, out.PublicValues.Bytes(), env.PublicValues())

			strategy.AssertNotCalled(t, "VerifyTransition", mock.Anything, mock.Anything, mock.Anything)
			pc.AssertNotCalled(t, "VerifyProof", mock.Anything, mock.Anything)
		})
	}
}

func TestPrecompileFailureIsFatal(t *testing.T) {
	g, h1 := header("genesis"), header("h1")
	prev := previousValues(g, g, true)

	rejected := errors.New("no such proof")
	pc := mocks.NewPrecompile(t)
	pc.On("VerifyProof", testVKey, types.DigestOf(prev)).Return(rejected).Once()
	strategy := newStrategy(t, nil)
	prog := ivc.NewProgram(strategy, pc)

	env := tape(t, testVKey, prev, g.Digest(), types.Continuation{Prior: g}, h1)
	_, err := prog.Step(env)

	var perr ivc.ErrPrecompile
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.True(t, errors.Is(err, rejected))
	assert.Equal(t, types.DigestOf(prev), perr.Digest)
	assert.True(t, ivc.IsFatal(err))
	assert.Empty(t, env.PublicValues())
	strategy.AssertNotCalled(t, "VerifyTransition", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrailingPreviousBytesAreIgnored(t *testing.T) {
	g, h1 := header("genesis"), header("h1")
	prev := append(previousValues(g, g, true), 0xff, 0xee)

	pc := mocks.NewPrecompile(t)
	// the whole item is what the previous proof committed
	pc.On("VerifyProof", testVKey, types.DigestOf(prev)).Return(nil).Once()
	prog := ivc.NewProgram(newStrategy(t, nil), pc)

	out, err := prog.Step(tape(t, testVKey, prev, g.Digest(), types.Continuation{Prior: g}, h1))
	require.NoError(t, err)
	assert.True(t, out.OK())
}

func TestDecodeErrorsAreFatal(t *testing.T) {
	g := header("genesis")
	valid := previousValues(g, g, true)

	badBool := previousValues(g, g, true)
	badBool[types.PublicValuesSize-1] = 2

	null, err := types.MarshalCBOR(nil)
	require.NoError(t, err)
	encodedG, err := types.MarshalCBOR(g)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		stdin func() *zkvm.Stdin
		item  string
	}{
		{"empty tape", zkvm.NewStdin, "verifying key"},
		{"short verifying key", func() *zkvm.Stdin {
			s := zkvm.NewStdin()
			s.WriteVec(make([]byte, 31))
			return s
		}, "verifying key"},
		{"raw previous values", func() *zkvm.Stdin {
			s := zkvm.NewStdin()
			s.Write(testVKey)
			s.WriteVec(valid)
			return s
		}, "previous public values"},
		{"short genesis hash", func() *zkvm.Stdin {
			s := zkvm.NewStdin()
			s.Write(testVKey)
			s.Write(bincode.Bytes(valid))
			s.WriteVec(make([]byte, 31))
			return s
		}, "genesis hash"},
		{"missing prior", func() *zkvm.Stdin {
			s := zkvm.NewStdin()
			s.Write(testVKey)
			s.Write(bincode.Bytes(valid))
			s.WriteVec(g.Digest().Bytes())
			return s
		}, "prior header"},
		{"garbage prior", func() *zkvm.Stdin {
			s := zkvm.NewStdin()
			s.Write(testVKey)
			s.Write(bincode.Bytes(valid))
			s.WriteVec(g.Digest().Bytes())
			s.WriteVec([]byte{0xff})
			return s
		}, "prior header"},
		{"null current", func() *zkvm.Stdin {
			s := zkvm.NewStdin()
			s.Write(testVKey)
			s.Write(bincode.Bytes(valid))
			s.WriteVec(g.Digest().Bytes())
			s.WriteVec(null)
			s.WriteVec(null)
			return s
		}, "current header"},
		{"truncated previous values", func() *zkvm.Stdin {
			s := zkvm.NewStdin()
			s.Write(testVKey)
			s.Write(bincode.Bytes(valid[:100]))
			s.WriteVec(g.Digest().Bytes())
			s.WriteVec(encodedG)
			s.WriteVec(encodedG)
			return s
		}, "previous head hash"},
		{"invalid previous ok", func() *zkvm.Stdin {
			s := zkvm.NewStdin()
			s.Write(testVKey)
			s.Write(bincode.Bytes(badBool))
			s.WriteVec(g.Digest().Bytes())
			s.WriteVec(encodedG)
			s.WriteVec(encodedG)
			return s
		}, "previous ok"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			pc := mocks.NewPrecompile(t)
			prog := ivc.NewProgram(newStrategy(t, nil), pc)

			env := zkvm.NewEnv(tc.stdin())
			_, err := prog.Step(env)

			var derr ivc.ErrDecode
			require.True(t, errors.As(err, &derr), "got %v", err)
			assert.Equal(t, tc.item, derr.Item)
			assert.True(t, ivc.IsFatal(err))
			assert.Empty(t, env.PublicValues())
			pc.AssertNotCalled(t, "VerifyProof", mock.Anything, mock.Anything)
		})
	}
}
