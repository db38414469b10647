// Package converter extracts the audio track of a media file into a
// standalone audio file.
//
// The external encoder sits behind the Tool interface; FFmpegTool is the
// production implementation. Overwriting an existing output requires
// approval from a confirm.Provider, and a declined prompt surfaces as
// services.ErrCancelled.
package converter
