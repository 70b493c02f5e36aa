package ir

// Opcode represents an ALU, pseudo or branch instruction of the program.
type Opcode uint16

const (
	OpcodeInvalid Opcode = iota
	OpcodePStartpgm
	OpcodePUnitTest
	OpcodePParallelcopy
	OpcodePPhi
	OpcodePLinearPhi
	OpcodePCreateVector
	OpcodePSplitVector
	OpcodePExtractVector
	OpcodePExtract
	OpcodePInsert
	OpcodePBranch
	OpcodePCbranchZ
	OpcodePCbranchNz
	OpcodeSMovB32
	OpcodeSMovB64
	OpcodeSNotB32
	OpcodeSNotB64
	OpcodeSAbsI32
	OpcodeSBcnt0I32B32
	OpcodeSBcnt1I32B32
	OpcodeSAndB32
	OpcodeSOrB32
	OpcodeSXorB32
	OpcodeSAndn2B32
	OpcodeSOrn2B32
	OpcodeSXnorB32
	OpcodeSNandB32
	OpcodeSNorB32
	OpcodeSCselectB32
	OpcodeSAndB64
	OpcodeSOrB64
	OpcodeSXorB64
	OpcodeSAndn2B64
	OpcodeSOrn2B64
	OpcodeSXnorB64
	OpcodeSNandB64
	OpcodeSNorB64
	OpcodeSCselectB64
	OpcodeSAbsdiffI32
	OpcodeSAddU32
	OpcodeSAddI32
	OpcodeSSubU32
	OpcodeSSubI32
	OpcodeSLshlB32
	OpcodeSMulI32
	OpcodeSLshl1AddU32
	OpcodeSLshl2AddU32
	OpcodeSLshl3AddU32
	OpcodeSLshl4AddU32
	OpcodeSCmpEqI32
	OpcodeSCmpLgI32
	OpcodeSCmpGtI32
	OpcodeSCmpGeI32
	OpcodeSCmpLtI32
	OpcodeSCmpLeI32
	OpcodeSCmpEqU32
	OpcodeSCmpLgU32
	OpcodeSCmpGtU32
	OpcodeSCmpGeU32
	OpcodeSCmpLtU32
	OpcodeSCmpLeU32
	OpcodeSCmpkEqI32
	OpcodeSCmpkLgI32
	OpcodeSCmpkGtI32
	OpcodeSCmpkGeI32
	OpcodeSCmpkLtI32
	OpcodeSCmpkLeI32
	OpcodeSCmpkEqU32
	OpcodeSCmpkLgU32
	OpcodeSCmpkGtU32
	OpcodeSCmpkGeU32
	OpcodeSCmpkLtU32
	OpcodeSCmpkLeU32
	OpcodeVMovB32
	OpcodeVNotB32
	OpcodeVCvtF32U32
	OpcodeVCvtF32I32
	OpcodeVCvtF32Ubyte0
	OpcodeVCvtF32Ubyte1
	OpcodeVCvtF32Ubyte2
	OpcodeVCvtF32Ubyte3
	OpcodeVCvtF32F16
	OpcodeVCvtF16F32
	OpcodeVRcpF32
	OpcodeVAddF32
	OpcodeVSubF32
	OpcodeVSubrevF32
	OpcodeVMulF32
	OpcodeVAddF16
	OpcodeVSubF16
	OpcodeVSubrevF16
	OpcodeVMulF16
	OpcodeVMaxF32
	OpcodeVMinF32
	OpcodeVMaxU32
	OpcodeVMinU32
	OpcodeVMaxI32
	OpcodeVMinI32
	OpcodeVOrB32
	OpcodeVAndB32
	OpcodeVXorB32
	OpcodeVXnorB32
	OpcodeVLshlrevB32
	OpcodeVAddU32
	OpcodeVSubU32
	OpcodeVSubrevU32
	OpcodeVMulU32U24
	OpcodeVMulI32I24
	OpcodeVCndmaskB32
	OpcodeVMadakF32
	OpcodeVMadmkF32
	OpcodeVFmaakF32
	OpcodeVFmamkF32
	OpcodeVFmaakF16
	OpcodeVFmamkF16
	OpcodeVMadF32
	OpcodeVFmaF32
	OpcodeVFmaF16
	OpcodeVAddF64
	OpcodeVMulF64
	OpcodeVFmaF64
	OpcodeVMax3F32
	OpcodeVMin3F32
	OpcodeVMed3F32
	OpcodeVMax3U32
	OpcodeVMin3U32
	OpcodeVMed3U32
	OpcodeVMax3I32
	OpcodeVMin3I32
	OpcodeVMed3I32
	OpcodeVMinmaxF32
	OpcodeVMaxminF32
	OpcodeVMinmaxU32
	OpcodeVMaxminU32
	OpcodeVMinmaxI32
	OpcodeVMaxminI32
	OpcodeVOr3B32
	OpcodeVXor3B32
	OpcodeVAndOrB32
	OpcodeVLshlOrB32
	OpcodeVBfiB32
	OpcodeVAdd3U32
	OpcodeVLshlAddU32
	OpcodeVAddLshlU32
	OpcodeVMadU32U24
	OpcodeVMadI32I24
	OpcodeVXadU32
	OpcodeVMadU32U16
	OpcodeVFmaMixF32
	OpcodeVFmaMixloF16
	OpcodeVCmpLtF32
	OpcodeVCmpGtF32
	OpcodeVCmpNltF32
	OpcodeVCmpNgtF32
	OpcodeVCmpEqF32
	OpcodeVCmpNeqF32
	OpcodeVCmpLtI32
	OpcodeVCmpGtI32
	OpcodeVCmpGeI32
	OpcodeVCmpLeI32
	OpcodeVCmpEqU32
	OpcodeVCmpLgU32

	opcodeEnd
)

var opcodeInfos = [opcodeEnd]opcodeInfo{
	OpcodePStartpgm:      {name: "p_startpgm", format: FormatPseudo, flags: opFlagSideEffect},
	OpcodePUnitTest:      {name: "p_unit_test", format: FormatPseudo, flags: opFlagSideEffect},
	OpcodePParallelcopy:  {name: "p_parallelcopy", format: FormatPseudo},
	OpcodePPhi:           {name: "p_phi", format: FormatPseudo},
	OpcodePLinearPhi:     {name: "p_linear_phi", format: FormatPseudo},
	OpcodePCreateVector:  {name: "p_create_vector", format: FormatPseudo},
	OpcodePSplitVector:   {name: "p_split_vector", format: FormatPseudo},
	OpcodePExtractVector: {name: "p_extract_vector", format: FormatPseudo},
	OpcodePExtract:       {name: "p_extract", format: FormatPseudo},
	OpcodePInsert:        {name: "p_insert", format: FormatPseudo},
	OpcodePBranch:        {name: "p_branch", format: FormatPseudoBranch, flags: opFlagSideEffect},
	OpcodePCbranchZ:      {name: "p_cbranch_z", format: FormatPseudoBranch, flags: opFlagSideEffect},
	OpcodePCbranchNz:     {name: "p_cbranch_nz", format: FormatPseudoBranch, flags: opFlagSideEffect},
	OpcodeSMovB32:        {name: "s_mov_b32", format: FormatSOP1, opTypes: [3]ALUType{typeU32}, defType: typeU32},
	OpcodeSMovB64:        {name: "s_mov_b64", format: FormatSOP1, opTypes: [3]ALUType{typeU64}, defType: typeU64},
	OpcodeSNotB32:        {name: "s_not_b32", format: FormatSOP1, opTypes: [3]ALUType{typeU32}, defType: typeU32},
	OpcodeSNotB64:        {name: "s_not_b64", format: FormatSOP1, opTypes: [3]ALUType{typeU64}, defType: typeU64},
	OpcodeSAbsI32:        {name: "s_abs_i32", format: FormatSOP1, opTypes: [3]ALUType{typeI32}, defType: typeI32},
	OpcodeSBcnt0I32B32:   {name: "s_bcnt0_i32_b32", format: FormatSOP1, opTypes: [3]ALUType{typeU32}, defType: typeU32},
	OpcodeSBcnt1I32B32:   {name: "s_bcnt1_i32_b32", format: FormatSOP1, opTypes: [3]ALUType{typeU32}, defType: typeU32},
	OpcodeSAndB32:        {name: "s_and_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative, inverse: OpcodeSNandB32},
	OpcodeSOrB32:         {name: "s_or_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative, inverse: OpcodeSNorB32},
	OpcodeSXorB32:        {name: "s_xor_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative, inverse: OpcodeSXnorB32},
	OpcodeSAndn2B32:      {name: "s_andn2_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32},
	OpcodeSOrn2B32:       {name: "s_orn2_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32},
	OpcodeSXnorB32:       {name: "s_xnor_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative, inverse: OpcodeSXorB32},
	OpcodeSNandB32:       {name: "s_nand_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative, inverse: OpcodeSAndB32},
	OpcodeSNorB32:        {name: "s_nor_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative, inverse: OpcodeSOrB32},
	OpcodeSCselectB32:    {name: "s_cselect_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32, typeBool}, defType: typeU32},
	OpcodeSAndB64:        {name: "s_and_b64", format: FormatSOP2, opTypes: [3]ALUType{typeU64, typeU64}, defType: typeU64, flags: opFlagCommutative, inverse: OpcodeSNandB64},
	OpcodeSOrB64:         {name: "s_or_b64", format: FormatSOP2, opTypes: [3]ALUType{typeU64, typeU64}, defType: typeU64, flags: opFlagCommutative, inverse: OpcodeSNorB64},
	OpcodeSXorB64:        {name: "s_xor_b64", format: FormatSOP2, opTypes: [3]ALUType{typeU64, typeU64}, defType: typeU64, flags: opFlagCommutative, inverse: OpcodeSXnorB64},
	OpcodeSAndn2B64:      {name: "s_andn2_b64", format: FormatSOP2, opTypes: [3]ALUType{typeU64, typeU64}, defType: typeU64},
	OpcodeSOrn2B64:       {name: "s_orn2_b64", format: FormatSOP2, opTypes: [3]ALUType{typeU64, typeU64}, defType: typeU64},
	OpcodeSXnorB64:       {name: "s_xnor_b64", format: FormatSOP2, opTypes: [3]ALUType{typeU64, typeU64}, defType: typeU64, flags: opFlagCommutative, inverse: OpcodeSXorB64},
	OpcodeSNandB64:       {name: "s_nand_b64", format: FormatSOP2, opTypes: [3]ALUType{typeU64, typeU64}, defType: typeU64, flags: opFlagCommutative, inverse: OpcodeSAndB64},
	OpcodeSNorB64:        {name: "s_nor_b64", format: FormatSOP2, opTypes: [3]ALUType{typeU64, typeU64}, defType: typeU64, flags: opFlagCommutative, inverse: OpcodeSOrB64},
	OpcodeSCselectB64:    {name: "s_cselect_b64", format: FormatSOP2, opTypes: [3]ALUType{typeU64, typeU64, typeBool}, defType: typeU64},
	OpcodeSAbsdiffI32:    {name: "s_absdiff_i32", format: FormatSOP2, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeSAddU32:        {name: "s_add_u32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeSAddI32:        {name: "s_add_i32", format: FormatSOP2, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative},
	OpcodeSSubU32:        {name: "s_sub_u32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32},
	OpcodeSSubI32:        {name: "s_sub_i32", format: FormatSOP2, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeI32},
	OpcodeSLshlB32:       {name: "s_lshl_b32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32},
	OpcodeSMulI32:        {name: "s_mul_i32", format: FormatSOP2, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative},
	OpcodeSLshl1AddU32:   {name: "s_lshl1_add_u32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32},
	OpcodeSLshl2AddU32:   {name: "s_lshl2_add_u32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32},
	OpcodeSLshl3AddU32:   {name: "s_lshl3_add_u32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32},
	OpcodeSLshl4AddU32:   {name: "s_lshl4_add_u32", format: FormatSOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32},
	OpcodeSCmpEqI32:      {name: "s_cmp_eq_i32", format: FormatSOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeBool, flags: opFlagCommutative, inverse: OpcodeSCmpLgI32},
	OpcodeSCmpLgI32:      {name: "s_cmp_lg_i32", format: FormatSOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeBool, flags: opFlagCommutative, inverse: OpcodeSCmpEqI32},
	OpcodeSCmpGtI32:      {name: "s_cmp_gt_i32", format: FormatSOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeBool, swapped: OpcodeSCmpLtI32, inverse: OpcodeSCmpLeI32},
	OpcodeSCmpGeI32:      {name: "s_cmp_ge_i32", format: FormatSOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeBool, swapped: OpcodeSCmpLeI32, inverse: OpcodeSCmpLtI32},
	OpcodeSCmpLtI32:      {name: "s_cmp_lt_i32", format: FormatSOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeBool, swapped: OpcodeSCmpGtI32, inverse: OpcodeSCmpGeI32},
	OpcodeSCmpLeI32:      {name: "s_cmp_le_i32", format: FormatSOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeBool, swapped: OpcodeSCmpGeI32, inverse: OpcodeSCmpGtI32},
	OpcodeSCmpEqU32:      {name: "s_cmp_eq_u32", format: FormatSOPC, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeBool, flags: opFlagCommutative, inverse: OpcodeSCmpLgU32},
	OpcodeSCmpLgU32:      {name: "s_cmp_lg_u32", format: FormatSOPC, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeBool, flags: opFlagCommutative, inverse: OpcodeSCmpEqU32},
	OpcodeSCmpGtU32:      {name: "s_cmp_gt_u32", format: FormatSOPC, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeBool, swapped: OpcodeSCmpLtU32, inverse: OpcodeSCmpLeU32},
	OpcodeSCmpGeU32:      {name: "s_cmp_ge_u32", format: FormatSOPC, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeBool, swapped: OpcodeSCmpLeU32, inverse: OpcodeSCmpLtU32},
	OpcodeSCmpLtU32:      {name: "s_cmp_lt_u32", format: FormatSOPC, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeBool, swapped: OpcodeSCmpGtU32, inverse: OpcodeSCmpGeU32},
	OpcodeSCmpLeU32:      {name: "s_cmp_le_u32", format: FormatSOPC, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeBool, swapped: OpcodeSCmpGeU32, inverse: OpcodeSCmpGtU32},
	OpcodeSCmpkEqI32:     {name: "s_cmpk_eq_i32", format: FormatSOPK, opTypes: [3]ALUType{typeI32}, defType: typeBool},
	OpcodeSCmpkLgI32:     {name: "s_cmpk_lg_i32", format: FormatSOPK, opTypes: [3]ALUType{typeI32}, defType: typeBool},
	OpcodeSCmpkGtI32:     {name: "s_cmpk_gt_i32", format: FormatSOPK, opTypes: [3]ALUType{typeI32}, defType: typeBool},
	OpcodeSCmpkGeI32:     {name: "s_cmpk_ge_i32", format: FormatSOPK, opTypes: [3]ALUType{typeI32}, defType: typeBool},
	OpcodeSCmpkLtI32:     {name: "s_cmpk_lt_i32", format: FormatSOPK, opTypes: [3]ALUType{typeI32}, defType: typeBool},
	OpcodeSCmpkLeI32:     {name: "s_cmpk_le_i32", format: FormatSOPK, opTypes: [3]ALUType{typeI32}, defType: typeBool},
	OpcodeSCmpkEqU32:     {name: "s_cmpk_eq_u32", format: FormatSOPK, opTypes: [3]ALUType{typeU32}, defType: typeBool},
	OpcodeSCmpkLgU32:     {name: "s_cmpk_lg_u32", format: FormatSOPK, opTypes: [3]ALUType{typeU32}, defType: typeBool},
	OpcodeSCmpkGtU32:     {name: "s_cmpk_gt_u32", format: FormatSOPK, opTypes: [3]ALUType{typeU32}, defType: typeBool},
	OpcodeSCmpkGeU32:     {name: "s_cmpk_ge_u32", format: FormatSOPK, opTypes: [3]ALUType{typeU32}, defType: typeBool},
	OpcodeSCmpkLtU32:     {name: "s_cmpk_lt_u32", format: FormatSOPK, opTypes: [3]ALUType{typeU32}, defType: typeBool},
	OpcodeSCmpkLeU32:     {name: "s_cmpk_le_u32", format: FormatSOPK, opTypes: [3]ALUType{typeU32}, defType: typeBool},
	OpcodeVMovB32:        {name: "v_mov_b32", format: FormatVOP1, opTypes: [3]ALUType{typeU32}, defType: typeU32},
	OpcodeVNotB32:        {name: "v_not_b32", format: FormatVOP1, opTypes: [3]ALUType{typeU32}, defType: typeU32},
	OpcodeVCvtF32U32:     {name: "v_cvt_f32_u32", format: FormatVOP1, opTypes: [3]ALUType{typeU32}, defType: typeF32, flags: opFlagOutputMods},
	OpcodeVCvtF32I32:     {name: "v_cvt_f32_i32", format: FormatVOP1, opTypes: [3]ALUType{typeI32}, defType: typeF32, flags: opFlagOutputMods},
	OpcodeVCvtF32Ubyte0:  {name: "v_cvt_f32_ubyte0", format: FormatVOP1, opTypes: [3]ALUType{typeU32}, defType: typeF32, flags: opFlagOutputMods},
	OpcodeVCvtF32Ubyte1:  {name: "v_cvt_f32_ubyte1", format: FormatVOP1, opTypes: [3]ALUType{typeU32}, defType: typeF32, flags: opFlagOutputMods},
	OpcodeVCvtF32Ubyte2:  {name: "v_cvt_f32_ubyte2", format: FormatVOP1, opTypes: [3]ALUType{typeU32}, defType: typeF32, flags: opFlagOutputMods},
	OpcodeVCvtF32Ubyte3:  {name: "v_cvt_f32_ubyte3", format: FormatVOP1, opTypes: [3]ALUType{typeU32}, defType: typeF32, flags: opFlagOutputMods},
	OpcodeVCvtF32F16:     {name: "v_cvt_f32_f16", format: FormatVOP1, opTypes: [3]ALUType{typeF16}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods},
	OpcodeVCvtF16F32:     {name: "v_cvt_f16_f32", format: FormatVOP1, opTypes: [3]ALUType{typeF32}, defType: typeF16, flags: opFlagInputMods | opFlagOutputMods},
	OpcodeVRcpF32:        {name: "v_rcp_f32", format: FormatVOP1, opTypes: [3]ALUType{typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods},
	OpcodeVAddF32:        {name: "v_add_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVSubF32:        {name: "v_sub_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods, swapped: OpcodeVSubrevF32},
	OpcodeVSubrevF32:     {name: "v_subrev_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods, swapped: OpcodeVSubF32},
	OpcodeVMulF32:        {name: "v_mul_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVAddF16:        {name: "v_add_f16", format: FormatVOP2, opTypes: [3]ALUType{typeF16, typeF16}, defType: typeF16, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVSubF16:        {name: "v_sub_f16", format: FormatVOP2, opTypes: [3]ALUType{typeF16, typeF16}, defType: typeF16, flags: opFlagInputMods | opFlagOutputMods, swapped: OpcodeVSubrevF16},
	OpcodeVSubrevF16:     {name: "v_subrev_f16", format: FormatVOP2, opTypes: [3]ALUType{typeF16, typeF16}, defType: typeF16, flags: opFlagInputMods | opFlagOutputMods, swapped: OpcodeVSubF16},
	OpcodeVMulF16:        {name: "v_mul_f16", format: FormatVOP2, opTypes: [3]ALUType{typeF16, typeF16}, defType: typeF16, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVMaxF32:        {name: "v_max_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVMinF32:        {name: "v_min_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVMaxU32:        {name: "v_max_u32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVMinU32:        {name: "v_min_u32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVMaxI32:        {name: "v_max_i32", format: FormatVOP2, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative},
	OpcodeVMinI32:        {name: "v_min_i32", format: FormatVOP2, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative},
	OpcodeVOrB32:         {name: "v_or_b32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVAndB32:        {name: "v_and_b32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVXorB32:        {name: "v_xor_b32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVXnorB32:       {name: "v_xnor_b32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVLshlrevB32:    {name: "v_lshlrev_b32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32},
	OpcodeVAddU32:        {name: "v_add_u32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVSubU32:        {name: "v_sub_u32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, swapped: OpcodeVSubrevU32},
	OpcodeVSubrevU32:     {name: "v_subrev_u32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, swapped: OpcodeVSubU32},
	OpcodeVMulU32U24:     {name: "v_mul_u32_u24", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVMulI32I24:     {name: "v_mul_i32_i24", format: FormatVOP2, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative},
	OpcodeVCndmaskB32:    {name: "v_cndmask_b32", format: FormatVOP2, opTypes: [3]ALUType{typeU32, typeU32, typeLaneMask}, defType: typeU32, flags: opFlagInputMods},
	OpcodeVMadakF32:      {name: "v_madak_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods},
	OpcodeVMadmkF32:      {name: "v_madmk_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods},
	OpcodeVFmaakF32:      {name: "v_fmaak_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods},
	OpcodeVFmamkF32:      {name: "v_fmamk_f32", format: FormatVOP2, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods},
	OpcodeVFmaakF16:      {name: "v_fmaak_f16", format: FormatVOP2, opTypes: [3]ALUType{typeF16, typeF16, typeF16}, defType: typeF16, flags: opFlagInputMods},
	OpcodeVFmamkF16:      {name: "v_fmamk_f16", format: FormatVOP2, opTypes: [3]ALUType{typeF16, typeF16, typeF16}, defType: typeF16, flags: opFlagInputMods},
	OpcodeVMadF32:        {name: "v_mad_f32", format: FormatVOP3, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVFmaF32:        {name: "v_fma_f32", format: FormatVOP3, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVFmaF16:        {name: "v_fma_f16", format: FormatVOP3, opTypes: [3]ALUType{typeF16, typeF16, typeF16}, defType: typeF16, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVAddF64:        {name: "v_add_f64", format: FormatVOP3, opTypes: [3]ALUType{typeF64, typeF64}, defType: typeF64, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVMulF64:        {name: "v_mul_f64", format: FormatVOP3, opTypes: [3]ALUType{typeF64, typeF64}, defType: typeF64, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVFmaF64:        {name: "v_fma_f64", format: FormatVOP3, opTypes: [3]ALUType{typeF64, typeF64, typeF64}, defType: typeF64, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVMax3F32:       {name: "v_max3_f32", format: FormatVOP3, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative3},
	OpcodeVMin3F32:       {name: "v_min3_f32", format: FormatVOP3, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative3},
	OpcodeVMed3F32:       {name: "v_med3_f32", format: FormatVOP3, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative3},
	OpcodeVMax3U32:       {name: "v_max3_u32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative3},
	OpcodeVMin3U32:       {name: "v_min3_u32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative3},
	OpcodeVMed3U32:       {name: "v_med3_u32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative3},
	OpcodeVMax3I32:       {name: "v_max3_i32", format: FormatVOP3, opTypes: [3]ALUType{typeI32, typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative3},
	OpcodeVMin3I32:       {name: "v_min3_i32", format: FormatVOP3, opTypes: [3]ALUType{typeI32, typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative3},
	OpcodeVMed3I32:       {name: "v_med3_i32", format: FormatVOP3, opTypes: [3]ALUType{typeI32, typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative3},
	OpcodeVMinmaxF32:     {name: "v_minmax_f32", format: FormatVOP3, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVMaxminF32:     {name: "v_maxmin_f32", format: FormatVOP3, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVMinmaxU32:     {name: "v_minmax_u32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVMaxminU32:     {name: "v_maxmin_u32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVMinmaxI32:     {name: "v_minmax_i32", format: FormatVOP3, opTypes: [3]ALUType{typeI32, typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative},
	OpcodeVMaxminI32:     {name: "v_maxmin_i32", format: FormatVOP3, opTypes: [3]ALUType{typeI32, typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative},
	OpcodeVOr3B32:        {name: "v_or3_b32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative3},
	OpcodeVXor3B32:       {name: "v_xor3_b32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative3},
	OpcodeVAndOrB32:      {name: "v_and_or_b32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVLshlOrB32:     {name: "v_lshl_or_b32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32},
	OpcodeVBfiB32:        {name: "v_bfi_b32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32},
	OpcodeVAdd3U32:       {name: "v_add3_u32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative3},
	OpcodeVLshlAddU32:    {name: "v_lshl_add_u32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32},
	OpcodeVAddLshlU32:    {name: "v_add_lshl_u32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVMadU32U24:     {name: "v_mad_u32_u24", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVMadI32I24:     {name: "v_mad_i32_i24", format: FormatVOP3, opTypes: [3]ALUType{typeI32, typeI32, typeI32}, defType: typeI32, flags: opFlagCommutative},
	OpcodeVXadU32:        {name: "v_xad_u32", format: FormatVOP3, opTypes: [3]ALUType{typeU32, typeU32, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVMadU32U16:     {name: "v_mad_u32_u16", format: FormatVOP3, opTypes: [3]ALUType{typeU16, typeU16, typeU32}, defType: typeU32, flags: opFlagCommutative},
	OpcodeVFmaMixF32:     {name: "v_fma_mix_f32", format: FormatVOP3P, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF32, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVFmaMixloF16:   {name: "v_fma_mixlo_f16", format: FormatVOP3P, opTypes: [3]ALUType{typeF32, typeF32, typeF32}, defType: typeF16, flags: opFlagInputMods | opFlagOutputMods | opFlagCommutative},
	OpcodeVCmpLtF32:      {name: "v_cmp_lt_f32", format: FormatVOPC, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeLaneMask, flags: opFlagInputMods, swapped: OpcodeVCmpGtF32, inverse: OpcodeVCmpNltF32},
	OpcodeVCmpGtF32:      {name: "v_cmp_gt_f32", format: FormatVOPC, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeLaneMask, flags: opFlagInputMods, swapped: OpcodeVCmpLtF32, inverse: OpcodeVCmpNgtF32},
	OpcodeVCmpNltF32:     {name: "v_cmp_nlt_f32", format: FormatVOPC, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeLaneMask, flags: opFlagInputMods, swapped: OpcodeVCmpNgtF32, inverse: OpcodeVCmpLtF32},
	OpcodeVCmpNgtF32:     {name: "v_cmp_ngt_f32", format: FormatVOPC, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeLaneMask, flags: opFlagInputMods, swapped: OpcodeVCmpNltF32, inverse: OpcodeVCmpGtF32},
	OpcodeVCmpEqF32:      {name: "v_cmp_eq_f32", format: FormatVOPC, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeLaneMask, flags: opFlagInputMods | opFlagCommutative, inverse: OpcodeVCmpNeqF32},
	OpcodeVCmpNeqF32:     {name: "v_cmp_neq_f32", format: FormatVOPC, opTypes: [3]ALUType{typeF32, typeF32}, defType: typeLaneMask, flags: opFlagInputMods | opFlagCommutative, inverse: OpcodeVCmpEqF32},
	OpcodeVCmpLtI32:      {name: "v_cmp_lt_i32", format: FormatVOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeLaneMask, swapped: OpcodeVCmpGtI32, inverse: OpcodeVCmpGeI32},
	OpcodeVCmpGtI32:      {name: "v_cmp_gt_i32", format: FormatVOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeLaneMask, swapped: OpcodeVCmpLtI32, inverse: OpcodeVCmpLeI32},
	OpcodeVCmpGeI32:      {name: "v_cmp_ge_i32", format: FormatVOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeLaneMask, swapped: OpcodeVCmpLeI32, inverse: OpcodeVCmpLtI32},
	OpcodeVCmpLeI32:      {name: "v_cmp_le_i32", format: FormatVOPC, opTypes: [3]ALUType{typeI32, typeI32}, defType: typeLaneMask, swapped: OpcodeVCmpGeI32, inverse: OpcodeVCmpGtI32},
	OpcodeVCmpEqU32:      {name: "v_cmp_eq_u32", format: FormatVOPC, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeLaneMask, flags: opFlagCommutative, inverse: OpcodeVCmpLgU32},
	OpcodeVCmpLgU32:      {name: "v_cmp_lg_u32", format: FormatVOPC, opTypes: [3]ALUType{typeU32, typeU32}, defType: typeLaneMask, flags: opFlagCommutative, inverse: OpcodeVCmpEqU32},
}
