// Package mujoco implements an environment backed by the MuJoCo 2.0
// physics engine. The package is only built with the mujoco build tag,
// and requires CGO_CFLAGS and CGO_LDFLAGS to point at the MuJoCo
// headers and libraries:
//
//	export CGO_CFLAGS="-I$HOME/.mujoco/mujoco200_linux/include"
//	export CGO_LDFLAGS="-L$HOME/.mujoco/mujoco200_linux/bin"
//	go build -tags mujoco ./...
//
// The licence key is read from the path in the MUJOCO_KEY environment
// variable, or from ~/.mujoco/mjkey.txt.
package mujoco
