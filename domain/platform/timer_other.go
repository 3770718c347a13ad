//go:build !windows

package platform

func beginHighRes() {}

func endHighRes() {}
