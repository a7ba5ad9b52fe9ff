// Package instr implements the machine's instruction set: a byte-tagged
// union with variable payload whose binary form is both the on-disk
// program representation and the in-memory dispatch target.
//
// Discriminants are exact and form part of the external interface — they
// must match the normative opcode table byte-for-byte so that encoded
// programs and the decoder agree.
package instr

// Opcode is the one-byte discriminant that identifies an instruction.
type Opcode byte

const (
	PSH1 Opcode = 0
	PSH2 Opcode = 1
	PSH4 Opcode = 2
	PSH8 Opcode = 3

	POP1 Opcode = 4
	POP2 Opcode = 5
	POP4 Opcode = 6
	POP8 Opcode = 7

	ALLOC    Opcode = 8
	COPYREF  Opcode = 9
	SETCHILD Opcode = 10
	GETCHILD Opcode = 11

	MOVSTHP1 Opcode = 12
	MOVSTHP2 Opcode = 13
	MOVSTHP4 Opcode = 14
	MOVSTHP8 Opcode = 15

	MOVHPST1 Opcode = 16
	MOVHPST2 Opcode = 17
	MOVHPST4 Opcode = 18
	MOVHPST8 Opcode = 19

	JSR Opcode = 20
	RET Opcode = 21

	JMPEQ Opcode = 22
	JMPNE Opcode = 23
	JMPGE Opcode = 24
	JMPGT Opcode = 25
	JMPLE Opcode = 26
	JMPLT Opcode = 27

	CMPU1 Opcode = 28
	CMPU2 Opcode = 29
	CMPU4 Opcode = 30
	CMPU8 Opcode = 31
	CMPS1 Opcode = 32
	CMPS2 Opcode = 33
	CMPS4 Opcode = 34
	CMPS8 Opcode = 35
	CMPF4 Opcode = 36
	CMPF8 Opcode = 37

	NOT1 Opcode = 38
	NOT2 Opcode = 39
	NOT4 Opcode = 40
	NOT8 Opcode = 41
	AND1 Opcode = 42
	AND2 Opcode = 43
	AND4 Opcode = 44
	AND8 Opcode = 45
	OR1  Opcode = 46
	OR2  Opcode = 47
	OR4  Opcode = 48
	OR8  Opcode = 49
	XOR1 Opcode = 50
	XOR2 Opcode = 51
	XOR4 Opcode = 52
	XOR8 Opcode = 53
	SHL1 Opcode = 54
	SHL2 Opcode = 55
	SHL4 Opcode = 56
	SHL8 Opcode = 57
	SHR1 Opcode = 58
	SHR2 Opcode = 59
	SHR4 Opcode = 60
	SHR8 Opcode = 61
	SAR1 Opcode = 62
	SAR2 Opcode = 63
	SAR4 Opcode = 64
	SAR8 Opcode = 65

	ADD1 Opcode = 66
	ADD2 Opcode = 67
	ADD4 Opcode = 68
	ADD8 Opcode = 69
	SUB1 Opcode = 70
	SUB2 Opcode = 71
	SUB4 Opcode = 72
	SUB8 Opcode = 73
	MUL1 Opcode = 74
	MUL2 Opcode = 75
	MUL4 Opcode = 76
	MUL8 Opcode = 77

	DIVREMU1 Opcode = 78
	DIVREMU2 Opcode = 79
	DIVREMU4 Opcode = 80
	DIVREMU8 Opcode = 81
	DIVREMS1 Opcode = 82
	DIVREMS2 Opcode = 83
	DIVREMS4 Opcode = 84
	DIVREMS8 Opcode = 85

	ADDF4 Opcode = 86
	ADDF8 Opcode = 87
	SUBF4 Opcode = 88
	SUBF8 Opcode = 89
	MULF4 Opcode = 90
	MULF8 Opcode = 91
	DIVF4 Opcode = 92
	DIVF8 Opcode = 93
	REMF4 Opcode = 94
	REMF8 Opcode = 95

	CNVU8F4 Opcode = 96
	CNVU8F8 Opcode = 97
	CNVS8F4 Opcode = 98
	CNVS8F8 Opcode = 99

	CNVF4U8 Opcode = 100
	CNVF8U8 Opcode = 101
	CNVF4S8 Opcode = 102
	CNVF8S8 Opcode = 103

	CNVF4F8 Opcode = 104
	CNVF8F4 Opcode = 105

	CALLEXT Opcode = 106
)

// opcodeNames mirrors the normative opcode table, used for disassembly and
// the assembler's mnemonic table.
var opcodeNames = map[Opcode]string{
	PSH1: "PSH_1", PSH2: "PSH_2", PSH4: "PSH_4", PSH8: "PSH_8",
	POP1: "POP_1", POP2: "POP_2", POP4: "POP_4", POP8: "POP_8",
	ALLOC: "ALLOC", COPYREF: "COPY_REF", SETCHILD: "SET_CHILD", GETCHILD: "GET_CHILD",
	MOVSTHP1: "MOV_ST_HP_1", MOVSTHP2: "MOV_ST_HP_2", MOVSTHP4: "MOV_ST_HP_4", MOVSTHP8: "MOV_ST_HP_8",
	MOVHPST1: "MOV_HP_ST_1", MOVHPST2: "MOV_HP_ST_2", MOVHPST4: "MOV_HP_ST_4", MOVHPST8: "MOV_HP_ST_8",
	JSR: "JSR", RET: "RET",
	JMPEQ: "JMP_EQ", JMPNE: "JMP_NE", JMPGE: "JMP_GE", JMPGT: "JMP_GT", JMPLE: "JMP_LE", JMPLT: "JMP_LT",
	CMPU1: "CMP_U_1", CMPU2: "CMP_U_2", CMPU4: "CMP_U_4", CMPU8: "CMP_U_8",
	CMPS1: "CMP_S_1", CMPS2: "CMP_S_2", CMPS4: "CMP_S_4", CMPS8: "CMP_S_8",
	CMPF4: "CMP_F4", CMPF8: "CMP_F8",
	NOT1: "NOT_1", NOT2: "NOT_2", NOT4: "NOT_4", NOT8: "NOT_8",
	AND1: "AND_1", AND2: "AND_2", AND4: "AND_4", AND8: "AND_8",
	OR1: "OR_1", OR2: "OR_2", OR4: "OR_4", OR8: "OR_8",
	XOR1: "XOR_1", XOR2: "XOR_2", XOR4: "XOR_4", XOR8: "XOR_8",
	SHL1: "SHL_1", SHL2: "SHL_2", SHL4: "SHL_4", SHL8: "SHL_8",
	SHR1: "SHR_1", SHR2: "SHR_2", SHR4: "SHR_4", SHR8: "SHR_8",
	SAR1: "SAR_1", SAR2: "SAR_2", SAR4: "SAR_4", SAR8: "SAR_8",
	ADD1: "ADD_1", ADD2: "ADD_2", ADD4: "ADD_4", ADD8: "ADD_8",
	SUB1: "SUB_1", SUB2: "SUB_2", SUB4: "SUB_4", SUB8: "SUB_8",
	MUL1: "MUL_1", MUL2: "MUL_2", MUL4: "MUL_4", MUL8: "MUL_8",
	DIVREMU1: "DIV_REM_U_1", DIVREMU2: "DIV_REM_U_2", DIVREMU4: "DIV_REM_U_4", DIVREMU8: "DIV_REM_U_8",
	DIVREMS1: "DIV_REM_S_1", DIVREMS2: "DIV_REM_S_2", DIVREMS4: "DIV_REM_S_4", DIVREMS8: "DIV_REM_S_8",
	ADDF4: "ADD_F_4", ADDF8: "ADD_F_8", SUBF4: "SUB_F_4", SUBF8: "SUB_F_8",
	MULF4: "MUL_F_4", MULF8: "MUL_F_8", DIVF4: "DIV_F_4", DIVF8: "DIV_F_8",
	REMF4: "REM_F_4", REMF8: "REM_F_8",
	CNVU8F4: "CNV_U8_F4", CNVU8F8: "CNV_U8_F8", CNVS8F4: "CNV_S8_F4", CNVS8F8: "CNV_S8_F8",
	CNVF4U8: "CNV_F4_U8", CNVF8U8: "CNV_F8_U8", CNVF4S8: "CNV_F4_S8", CNVF8S8: "CNV_F8_S8",
	CNVF4F8: "CNV_F4_F8", CNVF8F4: "CNV_F8_F4",
	CALLEXT: "CALL_EXT",
}

// nameToOpcode is built from opcodeNames for the assembler's mnemonic
// lookup.
var nameToOpcode map[string]Opcode

func init() {
	nameToOpcode = make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		nameToOpcode[name] = op
	}
}

// String returns the opcode's mnemonic, or "?unknown?" for an
// unrecognized discriminant.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "?unknown?"
}

// Lookup resolves a mnemonic (as produced by String) back to its Opcode.
func Lookup(name string) (Opcode, bool) {
	op, ok := nameToOpcode[name]
	return op, ok
}

// ImmediateLen returns the number of immediate payload bytes that follow
// this opcode's discriminant: 1/2/4/8 for PSH_1/2/4/8, and 0 for every
// other instruction.
func (o Opcode) ImmediateLen() int {
	switch o {
	case PSH1:
		return 1
	case PSH2:
		return 2
	case PSH4:
		return 4
	case PSH8:
		return 8
	default:
		return 0
	}
}
