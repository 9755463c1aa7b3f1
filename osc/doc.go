// Copyright 2013 - 2015 Sebastian Ruml <sebastian.ruml@gmail.com>
// Copyright 2021 - 2022 Mendel Greenberg <mendel@chabad360.me>

//Package osc encodes, decodes and transports the OpenSoundControl messages understood by
//the mixing console.
//
//Only the subset the console control path needs is implemented: OSC messages carrying
//
//	'i' (int32)
//	'f' (float32)
//
//arguments. Bundles, time tags and the remaining OSC 1.0 types are not supported.
//
//Frames
//
//A frame is one OSC message, a contiguous block of binary data whose length is always
//32-bit aligned:
//
//	address   NUL-terminated, NUL-padded to a multiple of 4
//	typetags  ',' followed by one tag per argument, NUL-terminated and padded
//	arguments 4 bytes each, big-endian
//
//Every frame is sent as one UDP datagram. Nothing is acknowledged or retried.
//
//Usage
//
//Sending a batch of frames:
//  frame, _ := osc.Encode("/sd/Input_Channels/1/fader", float32(0.76))
//  client, _ := osc.Dial("10.0.0.20:8000")
//  defer client.Close()
//  client.SendBatch([][]byte{frame})
//
//Watching what arrives on a port:
//  d := &osc.Dispatcher{}
//  d.AddMethodFunc("/sd/Input_Channels/*/fader", func(msg *osc.Message) {
//      fmt.Println(msg)
//  })
//
//  server := &osc.Server{
//      Addr:       "0.0.0.0:8001",
//      Dispatcher: d,
//  }
//  server.ListenAndServe()
package osc
