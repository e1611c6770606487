package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"its4teacher-go/internal/bootstrap"
	"its4teacher-go/internal/classifier"
	"its4teacher-go/internal/config"
	"its4teacher-go/internal/lexicon"
	"its4teacher-go/internal/model"
	"its4teacher-go/internal/pipeline"
	"its4teacher-go/pkg/llm"
)

const transcriptJSON = `{
  "videoDuration": 2400,
  "fullText": [
    {"role": "1", "sentenceContent": "什么是三角形？", "beginTime": 0, "endTime": 3},
    {"role": "2", "sentenceContent": "三条边围成的图形", "beginTime": 5, "endTime": 8},
    {"role": "1", "sentenceContent": "为什么内角和是180度？", "beginTime": 10, "endTime": 13},
    {"role": "3", "sentenceContent": "因为可以拼成平角", "beginTime": 20, "endTime": 24},
    {"role": "1", "sentenceContent": "如何用其他方法证明？", "beginTime": 30, "endTime": 33},
    {"role": "1", "sentenceContent": "好，我们继续。", "beginTime": 34, "endTime": 36}
  ]
}`

func newProcessor(fs afero.Fs, opts ...pipeline.Option) *pipeline.Processor {
	opts = append([]pipeline.Option{pipeline.WithOutput(io.Discard), pipeline.WithRunID("test-run")}, opts...)
	return pipeline.NewProcessor(fs, classifier.NewLabeler(lexicon.Default()), opts...)
}

func writeFixture(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func readJSONFile(t *testing.T, fs afero.Fs, path string, v interface{}) []byte {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return data
}

func TestRunSentiment(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "data/triangle2.json", transcriptJSON)

	if err := newProcessor(fs).RunSentiment(context.Background(), "data/triangle2.json", "out/analyze_sentiment.json"); err != nil {
		t.Fatalf("RunSentiment() error = %v", err)
	}

	var records []model.QuestionRecord
	data := readJSONFile(t, fs, "out/analyze_sentiment.json", &records)

	stats := model.NewSentimentStatistics()
	answered := 0
	for _, q := range records {
		stats.Add(q)
		if q.Answered {
			answered++
		}
	}
	matSum := 0
	for _, m := range model.MatTypes[:3] {
		if stats.Mat[m] != 1 {
			t.Errorf("mat[%s] = %d, want 1", m, stats.Mat[m])
		}
	}
	for _, n := range stats.Mat {
		matSum += n
	}
	if matSum != 3 || answered != 2 {
		t.Errorf("mat sum = %d, answered = %d, want 3 and 2", matSum, answered)
	}

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	want := []struct {
		question string
		mat      model.MatType
		bloom    model.BloomLevel
		answered bool
		answer   string
	}{
		{"什么是三角形？", model.MatWhatIs, model.BloomRemember, true, "三条边围成的图形"},
		{"为什么内角和是180度？", model.MatWhy, model.BloomAnalyze, true, "因为可以拼成平角"},
		{"如何用其他方法证明？", model.MatHow, model.BloomAnalyze, false, ""},
	}
	for i, w := range want {
		got := records[i]
		if got.Question != w.question || got.Mat != w.mat || got.BlmType != w.bloom ||
			got.Answered != w.answered || got.Answer != w.answer {
			t.Errorf("records[%d] = %+v, want %+v", i, got, w)
		}
		if got.FeedbackType != model.FeedbackNone {
			t.Errorf("records[%d].FeedbackType = %q", i, got.FeedbackType)
		}
	}

	if !bytes.Contains(data, []byte(`"question": "什么是三角形？"`)) {
		t.Error("output should keep Chinese text unescaped with two-space indentation")
	}
	if !bytes.Contains(data, []byte(`"question_sentiment"`)) || !bytes.Contains(data, []byte(`"blmType"`)) {
		t.Error("output is missing wire field names")
	}
}

func TestRunSentimentIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "in.json", transcriptJSON)
	p := newProcessor(fs)

	if err := p.RunSentiment(context.Background(), "in.json", "a.json"); err != nil {
		t.Fatal(err)
	}
	if err := p.RunSentiment(context.Background(), "in.json", "b.json"); err != nil {
		t.Fatal(err)
	}
	a, _ := afero.ReadFile(fs, "a.json")
	b, _ := afero.ReadFile(fs, "b.json")
	if !bytes.Equal(a, b) {
		t.Error("two runs over the same input produced different bytes")
	}
}

func TestRunSentimentInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		setup func(fs afero.Fs)
	}{
		{"missing file", func(afero.Fs) {}},
		{"malformed json", func(fs afero.Fs) { afero.WriteFile(fs, "in.json", []byte("{not json"), 0o644) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			tt.setup(fs)

			err := newProcessor(fs).RunSentiment(context.Background(), "in.json", "out.json")
			if !errors.Is(err, pipeline.ErrInvalidInput) {
				t.Fatalf("RunSentiment() error = %v, want ErrInvalidInput", err)
			}
			if ok, _ := afero.Exists(fs, "out.json"); ok {
				t.Error("output written despite invalid input")
			}
		})
	}
}

func TestRunThreeHeRuleClassifier(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "in.json", transcriptJSON)
	p := newProcessor(fs)
	ctx := context.Background()

	if err := p.RunSentiment(ctx, "in.json", "sentiment.json"); err != nil {
		t.Fatal(err)
	}
	err := p.RunThreeHe(ctx, "sentiment.json", "three.json", pipeline.ThreeHeOptions{
		Classifier: classifier.NewRuleThreeHe(lexicon.Default()),
	})
	if err != nil {
		t.Fatalf("RunThreeHe() error = %v", err)
	}

	var report model.ThreeHeReport
	readJSONFile(t, fs, "three.json", &report)

	wantThree := []model.ThreeHeType{model.ThreeHeWhence, model.ThreeHeWhence, model.ThreeHeWhatElse}
	if len(report.Questions) != len(wantThree) {
		t.Fatalf("len(questions) = %d, want %d", len(report.Questions), len(wantThree))
	}
	for i, w := range wantThree {
		if report.Questions[i].Three != w {
			t.Errorf("questions[%d].Three = %s, want %s", i, report.Questions[i].Three, w)
		}
	}

	s := report.Statistics
	if s.Total != 3 || s.ThreeHe[model.ThreeHeWhence] != 2 || s.ThreeHe[model.ThreeHeWhatElse] != 1 {
		t.Errorf("statistics = %+v", s)
	}
	if _, ok := s.ThreeHe[model.ThreeHeNone]; ok {
		t.Error("rule path should not report 无")
	}
	if s.Mat[model.MatWhatIs] != 1 || s.Mat[model.MatWhy] != 1 || s.Mat[model.MatHow] != 1 || s.Mat[model.MatWhatIf] != 0 {
		t.Errorf("mat statistics = %v", s.Mat)
	}
}

// scripted 按顺序返回预设的三何类型。
type scripted struct {
	labels []model.ThreeHeType
	calls  int
}

func (s *scripted) ClassifyThreeHe(context.Context, string) model.ThreeHeType {
	t := s.labels[s.calls%len(s.labels)]
	s.calls++
	return t
}

type checkpoint struct {
	processed, total int
	questions        int
	stats            model.ThreeHeStatistics
}

type recordingSink struct {
	checkpoints []checkpoint
}

func (s *recordingSink) Checkpoint(_ context.Context, partial *model.ThreeHeReport, processed, total int) error {
	s.checkpoints = append(s.checkpoints, checkpoint{processed, total, len(partial.Questions), partial.Statistics})
	return nil
}

func questions(n int) []model.QuestionRecord {
	records := make([]model.QuestionRecord, n)
	for i := range records {
		records[i] = model.QuestionRecord{
			Question:  fmt.Sprintf("第%d问？", i+1),
			Mat:       model.MatHow,
			BeginTime: float64(i * 10),
		}
	}
	return records
}

func TestClassifyThreeHeCheckpoints(t *testing.T) {
	sink := &recordingSink{}
	// 每 5 条里有 1 条"无"
	cls := &scripted{labels: []model.ThreeHeType{
		model.ThreeHeWhence, model.ThreeHeWhatElse, model.ThreeHeThenWhat, model.ThreeHeNone, model.ThreeHeWhence,
	}}

	var out bytes.Buffer
	report, err := newProcessor(afero.NewMemMapFs(), pipeline.WithOutput(&out)).ClassifyThreeHe(context.Background(), questions(25), pipeline.ThreeHeOptions{
		Classifier: cls,
		Remote:     true,
		Sink:       sink,
	})
	if err != nil {
		t.Fatalf("ClassifyThreeHe() error = %v", err)
	}
	for _, line := range []string{"已保存中间结果: 10/25", "已保存中间结果: 20/25"} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output missing %q", line)
		}
	}

	if len(sink.checkpoints) != 2 {
		t.Fatalf("checkpoints = %d, want 2", len(sink.checkpoints))
	}
	for i, want := range []checkpoint{{processed: 10, total: 25, questions: 8}, {processed: 20, total: 25, questions: 16}} {
		got := sink.checkpoints[i]
		if got.processed != want.processed || got.total != want.total || got.questions != want.questions {
			t.Errorf("checkpoint[%d] = %+v, want %+v", i, got, want)
		}
		if got.stats.Total != want.questions {
			t.Errorf("checkpoint[%d] total = %d, want %d", i, got.stats.Total, want.questions)
		}
	}
	if sink.checkpoints[0].stats.ThreeHe[model.ThreeHeNone] != 2 {
		t.Errorf("first checkpoint 无 = %d, want 2", sink.checkpoints[0].stats.ThreeHe[model.ThreeHeNone])
	}

	if len(report.Questions) != 20 || report.Statistics.Total != 20 {
		t.Errorf("final questions = %d (total %d), want 20", len(report.Questions), report.Statistics.Total)
	}
	if report.Statistics.ThreeHe[model.ThreeHeNone] != 5 {
		t.Errorf("无 = %d, want 5", report.Statistics.ThreeHe[model.ThreeHeNone])
	}
	if report.Statistics.Mat[model.MatHow] != 20 {
		t.Errorf("mat 如何 = %d, want 20", report.Statistics.Mat[model.MatHow])
	}
	for _, q := range report.Questions {
		if q.Three == model.ThreeHeNone {
			t.Fatalf("question %q with 无 was emitted", q.Question)
		}
	}
}

func TestClassifyThreeHeMissingMat(t *testing.T) {
	records := []model.QuestionRecord{{Question: "没有四何？"}, {Question: "有四何？", Mat: model.MatWhy}}
	report, err := newProcessor(afero.NewMemMapFs()).ClassifyThreeHe(context.Background(), records, pipeline.ThreeHeOptions{
		Classifier: classifier.NewRuleThreeHe(lexicon.Default()),
	})
	if err != nil {
		t.Fatalf("ClassifyThreeHe() error = %v", err)
	}

	if report.Questions[0].Mat != model.MatOther {
		t.Errorf("Mat = %s, want %s", report.Questions[0].Mat, model.MatOther)
	}
	if _, ok := report.Statistics.Mat[model.MatOther]; ok {
		t.Error("其他 should not be counted in mat statistics")
	}
	if report.Statistics.Mat[model.MatWhy] != 1 || report.Statistics.Total != 2 {
		t.Errorf("statistics = %+v", report.Statistics)
	}
}

type failingLLM struct{}

func (failingLLM) Chat(context.Context, []llm.Message, *llm.GenerationParams) (string, error) {
	return "", errors.New("connection refused")
}

func TestRemoteFailureMatchesRuleOnlyRun(t *testing.T) {
	lex := lexicon.Default()
	records := []model.QuestionRecord{
		{Question: "根据这个，还有吗？", Mat: model.MatWhatIs},
		{Question: "除了这个还有吗？", Mat: model.MatWhatIs},
		{Question: "那么下一步怎么做？", Mat: model.MatHow},
		{Question: "大家看黑板？", Mat: model.MatWhatIs},
	}

	// 允许远程分类但没有密钥时，驱动程序实际使用的分类器
	ruleOnly := bootstrap.NewThreeHe(config.Config{Analyzer: config.AnalyzerConfig{UseRemote: true}}, lex)
	defer ruleOnly.Close()
	if ruleOnly.Remote {
		t.Fatal("classifier without credential should not be remote")
	}
	remote := classifier.NewRemoteThreeHe(classifier.RemoteConfig{
		Interval: time.Second,
		Sleep:    func(context.Context, time.Duration) error { return nil },
	}, failingLLM{}, classifier.NewFastThreeHe(lex))

	run := func(cls classifier.ThreeHeClassifier, isRemote bool) (*model.ThreeHeReport, *recordingSink) {
		sink := &recordingSink{}
		report, err := newProcessor(afero.NewMemMapFs()).ClassifyThreeHe(context.Background(), records, pipeline.ThreeHeOptions{
			Classifier:      cls,
			Remote:          isRemote,
			CheckpointEvery: 2,
			Sink:            sink,
		})
		if err != nil {
			t.Fatalf("ClassifyThreeHe() error = %v", err)
		}
		return report, sink
	}

	want, wantSink := run(ruleOnly.Classifier, false)
	got, gotSink := run(remote, true)

	if len(got.Questions) != len(want.Questions) {
		t.Fatalf("questions = %d, want %d", len(got.Questions), len(want.Questions))
	}
	for i := range want.Questions {
		if got.Questions[i] != want.Questions[i] {
			t.Errorf("questions[%d] = %+v, want %+v", i, got.Questions[i], want.Questions[i])
		}
	}
	for _, three := range model.ThreeHeTypes {
		if got.Statistics.ThreeHe[three] != want.Statistics.ThreeHe[three] {
			t.Errorf("three_he[%s] = %d, want %d", three, got.Statistics.ThreeHe[three], want.Statistics.ThreeHe[three])
		}
	}
	for _, mat := range model.MatTypes {
		if got.Statistics.Mat[mat] != want.Statistics.Mat[mat] {
			t.Errorf("mat[%s] = %d, want %d", mat, got.Statistics.Mat[mat], want.Statistics.Mat[mat])
		}
	}
	if got.Statistics.Total != want.Statistics.Total {
		t.Errorf("total = %d, want %d", got.Statistics.Total, want.Statistics.Total)
	}

	if len(gotSink.checkpoints) != len(wantSink.checkpoints) {
		t.Fatalf("checkpoints = %d, want %d", len(gotSink.checkpoints), len(wantSink.checkpoints))
	}
	for i, w := range wantSink.checkpoints {
		g := gotSink.checkpoints[i]
		if g.processed != w.processed || g.questions != w.questions || g.stats.Total != w.stats.Total {
			t.Errorf("checkpoint[%d] = %+v, want %+v", i, g, w)
		}
	}
}

// cancellingLLM 在第 cancelAt 次调用时取消上下文。
type cancellingLLM struct {
	cancel   context.CancelFunc
	cancelAt int
	calls    int
}

func (c *cancellingLLM) Chat(context.Context, []llm.Message, *llm.GenerationParams) (string, error) {
	c.calls++
	if c.calls == c.cancelAt {
		c.cancel()
		return "", context.Canceled
	}
	return "由何", nil
}

func TestRunThreeHeInterrupted(t *testing.T) {
	fs := afero.NewMemMapFs()
	input, _ := json.Marshal(questions(3))
	writeFixture(t, fs, "in.json", string(input))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &cancellingLLM{cancel: cancel, cancelAt: 2}
	remote := classifier.NewRemoteThreeHe(classifier.RemoteConfig{}, client, classifier.NewFastThreeHe(lexicon.Default()))
	sink := pipeline.NewFileCheckpointSink(fs, "out.json")

	err := newProcessor(fs).RunThreeHe(ctx, "in.json", "out.json", pipeline.ThreeHeOptions{
		Classifier:      remote,
		Remote:          true,
		CheckpointEvery: 1,
		Sink:            sink,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunThreeHe() error = %v, want context.Canceled", err)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
	if ok, _ := afero.Exists(fs, "out.json"); ok {
		t.Error("final artifact written for an interrupted run")
	}

	var partial model.ThreeHeReport
	readJSONFile(t, fs, sink.Path(), &partial)
	if len(partial.Questions) != 1 || partial.Questions[0].Three != model.ThreeHeWhence {
		t.Errorf("checkpoint = %+v, want the single record classified before the interruption", partial.Questions)
	}
}

func TestFileCheckpointSink(t *testing.T) {
	if got := pipeline.CheckpointPath("data/question_classification.json"); got != "data/question_classification_temp.json" {
		t.Errorf("CheckpointPath() = %s", got)
	}
	if got := pipeline.CheckpointPath("out"); got != "out_temp.json" {
		t.Errorf("CheckpointPath() = %s", got)
	}

	fs := afero.NewMemMapFs()
	sink := pipeline.NewFileCheckpointSink(fs, "data/q.json")
	partial := &model.ThreeHeReport{
		Questions:  []model.ThreeHeRecord{{Question: "问？", Mat: model.MatHow, Three: model.ThreeHeWhence}},
		Statistics: model.NewThreeHeStatistics(true),
	}
	if err := sink.Checkpoint(context.Background(), partial, 10, 30); err != nil {
		t.Fatalf("Checkpoint() error = %v", err)
	}

	var got model.ThreeHeReport
	readJSONFile(t, fs, sink.Path(), &got)
	if len(got.Questions) != 1 || got.Questions[0].Question != "问？" {
		t.Errorf("checkpoint content = %+v", got)
	}
	if ok, _ := afero.Exists(fs, "data/q.json"); ok {
		t.Error("checkpoint must not write the final artifact")
	}
}

type fakeMirror struct {
	objects map[string][]byte
	err     error
}

func (m *fakeMirror) Put(_ context.Context, name string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.objects[name] = data
	return nil
}

func TestArtifactMirror(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "in.json", transcriptJSON)
	mirror := &fakeMirror{objects: map[string][]byte{}}

	if err := newProcessor(fs, pipeline.WithMirror(mirror)).RunSentiment(context.Background(), "in.json", "data/out.json"); err != nil {
		t.Fatal(err)
	}
	local, _ := afero.ReadFile(fs, "data/out.json")
	if got := mirror.objects["runs/test-run/out.json"]; !bytes.Equal(got, local) {
		t.Errorf("mirrored object = %q, want local artifact", got)
	}

	failing := &fakeMirror{err: errors.New("bucket unavailable")}
	if err := newProcessor(fs, pipeline.WithMirror(failing)).RunSentiment(context.Background(), "in.json", "data/out2.json"); err != nil {
		t.Errorf("mirror failure should not fail the run: %v", err)
	}
}

func TestRunChains(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "in.json", transcriptJSON)
	now := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	p := newProcessor(fs, pipeline.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if err := p.RunSentiment(ctx, "in.json", "sentiment.json"); err != nil {
		t.Fatal(err)
	}
	if err := p.RunChains(ctx, "sentiment.json", "chains.json"); err != nil {
		t.Fatalf("RunChains() error = %v", err)
	}

	var report model.ChainReport
	readJSONFile(t, fs, "chains.json", &report)
	if report.Metadata.TotalQuestions != 3 || !report.Metadata.ProcessedAt.Equal(now) {
		t.Errorf("metadata = %+v", report.Metadata)
	}
	if report.Metadata.TotalChains != len(report.Chains) || len(report.Chains) == 0 {
		t.Errorf("chains = %d, totalChains = %d", len(report.Chains), report.Metadata.TotalChains)
	}
}

func TestPrintSentimentSummary(t *testing.T) {
	var buf bytes.Buffer
	p := newProcessor(afero.NewMemMapFs())

	var transcript model.Transcript
	if err := json.Unmarshal([]byte(transcriptJSON), &transcript); err != nil {
		t.Fatal(err)
	}
	records, stats := p.AnalyzeTranscript(transcript)
	matSum := 0
	for _, n := range stats.Mat {
		matSum += n
	}
	if stats.Total != 3 || stats.Answered != 2 || matSum != 3 || len(stats.Mat) != 3 {
		t.Errorf("statistics = %+v, want one question of each of three mat types", stats)
	}
	pipeline.PrintSentimentSummary(&buf, transcript, records, stats)

	out := buf.String()
	for _, want := range []string{"视频时长: 2400秒", "总句子数: 6", "提取到 3 个教师提问", "有学生回答的问题: 2 个", "问题 3:"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
