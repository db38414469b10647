// Package language normalizes the language hints handed to transcription
// engines and the language codes they report back.
//
// Users may type ISO 639-1 codes, ISO 639-2 codes, BCP-47 tags, or plain
// English names; engines only accept ISO 639-1. The sentinel "auto" means no
// hint at all and is never forwarded.
package language
