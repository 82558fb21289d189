/*
Package zkvm is the host side of a proving step: the ordered input tape a
step reads from, the output stream it commits to, and the proofs that bind
a verifying key to committed public values.

A tape is a sequence of items. Stdin.Write appends the bincode encoding of a
value as one item; Stdin.WriteVec appends raw bytes as one item. Inside the
step, Env.Read and Env.ReadVec consume items strictly in order, and
Env.Commit appends to the public values.

	stdin := zkvm.NewStdin()
	stdin.Write(vkey)
	stdin.WriteVec(genesisHash[:])
	env := zkvm.NewEnv(stdin)

The proofs produced here seal public values under a verifying key hash.
They stand in for a succinct proving backend: a seal is only as good as the
host that computed it.
*/
package zkvm
