//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL sources into the SPIR-V modules the renderer loads.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	shaders := []string{"triangle.vert", "triangle.frag"}
	for _, s := range shaders {
		src := "assets/shaders/" + s
		out := src + ".spv"
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}
