// Package glsl implements the lexical source tooling gloo needs: comment
// stripping, #include expansion, extraction of declared uniforms, attributes
// and hook placeholders, and parsing of vendor compiler diagnostics.
//
// This is deliberately not a GLSL parser. Everything here is pattern
// matching over comment-masked text, which is all the shader composition
// layer requires. The masking step guarantees that declarations or
// hook-like text inside comments are never matched, while byte offsets into
// the original source stay valid.
package glsl
