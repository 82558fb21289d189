/*
Package ivc implements one step of an incrementally verified chain of
light-client headers.

Each step reads five items from its tape: the verifying key of the step
program, the public values committed by the previous step, the genesis hash
of the chain, the prior header (absent on the first step) and the current
header. It commits four values: the verifying key hash, the genesis hash,
the hash of the current header and whether the chain is still valid.

A continuation step checks, in order, that the previous step ran under the
same verifying key, was rooted at the same genesis, ended at the prior
header and was itself valid. Then it asks the precompile to confirm a proof
of the previous public values exists, and finally verifies the prior to
current transition with the configured Strategy. A broken chain is a
provable outcome and commits ok=false. Malformed input and a rejected
recursive proof abort the step without committing anything.
*/
package ivc
