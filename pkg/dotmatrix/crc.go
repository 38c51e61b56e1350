// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import "github.com/sigurn/crc16"

// CRC16CMS describes the frame checksum: MSB first, no reflection, no final XOR.
var CRC16CMS = crc16.Params{
	Poly:   CRCPolynomial,
	Init:   CRCInitial,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x0000,
	Check:  0xAEE7,
	Name:   "CRC-16/CMS",
}

var crcTable = crc16.MakeTable(CRC16CMS)

// UpdateCRC folds one byte into the running checksum, bit by bit.
func UpdateCRC(crc uint16, b byte) uint16 {
	for i := 0; i < 8; i++ {
		if (crc&0x8000)^(uint16(b&0x80)<<8) != 0 {
			crc = (crc << 1) ^ CRCPolynomial
		} else {
			crc <<= 1
		}
		b <<= 1
	}
	return crc
}

// CalculateCRC computes the frame checksum over data starting from CRCInitial.
// The decoder validates whole frames with it; the encoder streams UpdateCRC.
func CalculateCRC(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}
