// SPDX-License-Identifier: EPL-2.0

// Package config loads audio settings from INI files.
//
//	[audio]
//	sample_rate = 48000
//	channels = 2
//	prefetch = 16384
//	prime_timeout = 100ms
//
//	[volume]
//	global = 0.8
//	music = 0.5
//	effect = 1
//
//	[music]
//	dir = assets/music
//	tracks = title.ogg, battle.mp3
//	transition = smooth
//	transition_duration = 2s
//
//	[effect]
//	dir = assets/effects
//	files = explosion.wav, step.aiff
//	distance_model = linear
//	near = 10
//	far = 110
//
// Keys left out keep the value of Default.
package config
