package survey

import "github.com/tbxark/grainagent/types"

// Questions is the fixed survey form rendered by the web client.
var Questions = []types.SurveyQuestion{
	{ID: "target_gender", Label: "1. 주 섭취 대상 성별", Options: []string{"남 위주", "여 위주", "혼성", "임산부"}},
	{ID: "target_age", Label: "2. 주 섭취 대상 나이", Options: []string{"0~10대", "20-30대", "40~50대", "60대 이상"}},
	{ID: "texture_pref", Label: "3. 선호식감", Options: []string{"고슬밥", "찰진밥", "콩없는 밥", "선호없음"}},
	{ID: "disease", Label: "4. 질병 보유", Options: []string{"당뇨병", "고혈압", "암 예방", "해당 없음"}},
	{ID: "constitution1", Label: "5. 체질 개선1", Options: []string{"비만", "피로 회복", "체내 염증 감소", "해당 없음"}},
	{ID: "constitution2", Label: "6. 체질 개선2", Options: []string{"변비", "면역 강화", "혈중 콜레스테롤", "해당 없음"}},
	{ID: "expectation1", Label: "7. 효과 기대1", Options: []string{"골다공증", "치매 예방", "불면증", "해당 없음"}},
	{ID: "expectation2", Label: "8. 효과 기대2", Options: []string{"내장 지방 저하(지방간)", "항산화", "탈모", "해당 없음"}},
	{ID: "avoid_grains", Label: "9. 기피곡물", Options: []string{"없음", "기입", "대두 알러지", "글루텐 프리"}},
	{ID: "frequency", Label: "10. 섭취 빈도", Options: []string{"주 1~3회", "주 4~6회", "주 7~9회", "주 10회 이상"}},
}
