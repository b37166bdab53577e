package memory

// bootROM is the 256 byte ROM mapped at ROMBase. It reads drive 0,
// track 0, sector 1 into memory at address 0 through the FDC and jumps
// there, so whatever boot loader sits in the first sector of the disk
// gets control. On a FDC error it halts. 8080 instructions only, so the
// ROM works on both CPU models.
//
//	ff00  31 f8 fe        boot: lxi  sp,0fef8h ; stack below the command block
//	ff03  21 25 ff              lxi  h,tmpl
//	ff06  11 f8 fe              lxi  d,0fef8h   ; command block in RAM
//	ff09  06 06                 mvi  b,6
//	ff0b  7e              copy: mov  a,m        ; copy template out of ROM
//	ff0c  12                    stax d
//	ff0d  23                    inx  h
//	ff0e  13                    inx  d
//	ff0f  05                    dcr  b
//	ff10  c2 0b ff              jnz  copy
//	ff13  3e f8                 mvi  a,0f8h     ; block address low byte
//	ff15  d3 04                 out  4
//	ff17  3e fe                 mvi  a,0feh     ; high byte starts the command
//	ff19  d3 04                 out  4
//	ff1b  db 04                 in   4          ; FDC status
//	ff1d  b7                    ora  a
//	ff1e  c2 24 ff              jnz  fail
//	ff21  c3 00 00              jmp  0          ; run the boot sector
//	ff24  76              fail: hlt
//	ff25  00 00 00 01     tmpl: db   0,0,0,1    ; read, drive 0, track 0, sector 1
//	ff29  00 00                 dw   0          ; transfer address
var bootROM = [256]byte{
	0x31, 0xf8, 0xfe,
	0x21, 0x25, 0xff,
	0x11, 0xf8, 0xfe,
	0x06, 0x06,
	0x7e,
	0x12,
	0x23,
	0x13,
	0x05,
	0xc2, 0x0b, 0xff,
	0x3e, 0xf8,
	0xd3, 0x04,
	0x3e, 0xfe,
	0xd3, 0x04,
	0xdb, 0x04,
	0xb7,
	0xc2, 0x24, 0xff,
	0xc3, 0x00, 0x00,
	0x76,
	0x00, 0x00, 0x00, 0x01,
	0x00, 0x00,
}
