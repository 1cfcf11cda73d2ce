package dataset

import (
	"path"

	"github.com/revelaction/absaset/adapter"
	"github.com/revelaction/absaset/derive"
)

func markup(s adapter.Schema) func(adapter.Deps) adapter.Adapter {
	return func(d adapter.Deps) adapter.Adapter {
		return adapter.NewMarkup(d, s)
	}
}

func delimited(l adapter.Layout) func(adapter.Deps) adapter.Adapter {
	return func(d adapter.Deps) adapter.Adapter {
		return adapter.NewDelimited(d, l)
	}
}

func placeholder(d adapter.Deps) adapter.Adapter {
	return adapter.NewPlaceholder(d)
}

func weibo(d adapter.Deps) adapter.Adapter {
	return adapter.NewWeibo(d)
}

var (
	// sentences without terms dropped
	termRules = derive.Rules{Scope: derive.ScopeSentence, DropEmpty: true}

	// sentence categories, empty labels are a class
	sentenceCategoryRules = derive.Rules{Scope: derive.ScopeSentence, Source: derive.SourceCategories}

	// term categories reconciled per sentence, sentences without labels dropped
	reconciledCategoryRules = derive.Rules{
		Scope:            derive.ScopeSentence,
		Source:           derive.SourceTerms,
		DropEmpty:        true,
		CollapseNewlines: true,
	}

	labeledSentenceCategoryRules = derive.Rules{
		Scope:            derive.ScopeSentence,
		Source:           derive.SourceCategories,
		DropEmpty:        true,
		CollapseNewlines: true,
	}

	categoryDetectionRules = derive.Rules{Scope: derive.ScopeSentence, Source: derive.SourceCategories, DropEmpty: true}

	termDetectionRules = derive.Rules{Scope: derive.ScopeSentence, Source: derive.SourceTerms, DropEmpty: true}

	documentCategoryRules = derive.Rules{Scope: derive.ScopeDocument, Source: derive.SourceCategories}

	documentCategoryDetectionRules = derive.Rules{Scope: derive.ScopeDocument, Source: derive.SourceCategories, DropEmpty: true}

	documentSentimentRules = derive.Rules{Scope: derive.ScopeDocument}
)

func semEval2014(name, train, test string, category bool) Entry {
	e := Entry{
		Name: name,
		Locators: adapter.Locators{
			Train: path.Join(name, "origin", "SemEval'14-ABSA-TrainData_v2 & AnnotationGuidelines", train),
			Test:  path.Join(name, "origin", "ABSA_Gold_TestData", test),
		},
		New:   markup(adapter.SemEval2014),
		Tasks: map[derive.Task]derive.Rules{derive.TaskTerm: termRules},
	}
	if category {
		e.Tasks[derive.TaskCategory] = sentenceCategoryRules
	}
	return e
}

func mams(name, subset string, category bool) Entry {
	dir := path.Join("MAMS-for-ABSA", subset, "raw")
	e := Entry{
		Name: name,
		Locators: adapter.Locators{
			Train: path.Join(dir, "train.xml"),
			Dev:   path.Join(dir, "val.xml"),
			Test:  path.Join(dir, "test.xml"),
		},
		New:   markup(adapter.SemEval2014),
		Tasks: map[derive.Task]derive.Rules{derive.TaskTerm: termRules},
	}
	if category {
		e.Tasks[derive.TaskCategory] = sentenceCategoryRules
	}
	return e
}

func semEval2015(name, train, test string) Entry {
	loc := adapter.Locators{Test: path.Join(name, "origin", test)}
	if train != "" {
		loc.Train = path.Join(name, "origin", train)
	}
	return Entry{
		Name:     name,
		Locators: loc,
		New:      markup(adapter.SemEval2015),
		Tasks: map[derive.Task]derive.Rules{
			derive.TaskTerm:     termRules,
			derive.TaskCategory: reconciledCategoryRules,
		},
	}
}

// semEval2016Sub1 entries take their categories from the sentence level
// opinions without target.
func semEval2016Sub1(name, train, test string) Entry {
	return Entry{
		Name: name,
		Locators: adapter.Locators{
			Train: path.Join(name, "origin", train),
			Test:  path.Join(name, "origin", test),
		},
		New: markup(adapter.SemEval2015),
		Tasks: map[derive.Task]derive.Rules{
			derive.TaskTerm:              termRules,
			derive.TaskCategory:          labeledSentenceCategoryRules,
			derive.TaskCategoryDetection: categoryDetectionRules,
		},
	}
}

func semEval2016Sub2(name, train, test string) Entry {
	return Entry{
		Name: name,
		Locators: adapter.Locators{
			Train: path.Join(name, "origin", train),
			Test:  path.Join(name, "origin", test),
		},
		New: markup(adapter.SemEval2016Text),
		Tasks: map[derive.Task]derive.Rules{
			derive.TaskCategory:          documentCategoryRules,
			derive.TaskCategoryDetection: documentCategoryDetectionRules,
		},
	}
}

// Builtin returns the registry of the known corpora. Locators are relative
// to the data directory.
func Builtin() *Registry {
	restSB1 := semEval2016Sub1("SemEval-2016-Task-5-REST-SB1", "ABSA16_Restaurants_Train_SB1_v2.xml", "EN_REST_SB1_TEST.xml.gold")
	restSB1.Tasks[derive.TaskCategory] = reconciledCategoryRules
	restSB1.Tasks[derive.TaskCategoryDetection] = termDetectionRules
	restSB1.Tasks[derive.TaskEntityDetection] = termDetectionRules

	news := path.Join("bdci2019", "互联网新闻情感分析")
	financial := path.Join("bdci2019", "金融信息负面及主体判定")
	nlpcc := path.Join("NLP-CC2012-微博情感分析评测数据", "微博情感分析评测")

	return NewRegistry(
		semEval2014("SemEval-2014-Task-4-LAPT", "Laptop_Train_v2.xml", "Laptops_Test_Gold.xml", false),
		semEval2014("SemEval-2014-Task-4-REST", "Restaurants_Train_v2.xml", "Restaurants_Test_Gold.xml", true),
		mams("MAMSATSA", "MAMS-ATSA", false),
		mams("MAMSACSA", "MAMS-ACSA", true),

		semEval2015("SemEval-2015-Task-12-LAPT", "ABSA15_LaptopsTrain/ABSA-15_Laptops_Train_Data.xml", "ABSA15_Laptops_Test.xml"),
		semEval2015("SemEval-2015-Task-12-REST", "ABSA15_RestaurantsTrain/ABSA-15_Restaurants_Train_Final.xml", "ABSA15_Restaurants_Test.xml"),
		semEval2015("SemEval-2015-Task-12-HOTEL", "", "ABSA15_Hotels_Test.xml"),

		semEval2016Sub1("SemEval-2016-Task-5-CH-CAME-SB1", "camera_corpus/camera_training.xml", "CH_CAME_SB1_TEST_.xml"),
		semEval2016Sub1("SemEval-2016-Task-5-CH-PHNS-SB1", "Chinese_phones_training.xml", "CH_PHNS_SB1_TEST_.xml"),
		semEval2016Sub1("SemEval-2016-Task-5-LAPT-SB1", "ABSA16_Laptops_Train_SB1_v2.xml", "EN_LAPT_SB1_TEST_.xml.gold"),
		restSB1,
		semEval2016Sub2("SemEval-2016-Task-5-LAPT-SB2", "ABSA16_Laptops_Train_English_SB2.xml", "EN_LAPT_SB2_TEST.xml.gold"),
		semEval2016Sub2("SemEval-2016-Task-5-REST-SB2", "ABSA16_Restaurants_Train_English_SB2.xml", "EN_REST_SB2_TEST.xml.gold"),

		Entry{
			Name: "bdci2019-internet-news-sa",
			Locators: adapter.Locators{
				Train:       path.Join(news, "Train_DataSet.csv"),
				TrainLabels: path.Join(news, "Train_DataSet_Label.csv"),
				Test:        path.Join(news, "Test_DataSet.csv"),
				TestLabels:  path.Join(news, "submit_example.csv"),
			},
			New:   delimited(adapter.LayoutTextLabel),
			Tasks: map[derive.Task]derive.Rules{derive.TaskSentiment: documentSentimentRules},
		},
		Entry{
			Name: "bdci2019-financial-negative",
			Locators: adapter.Locators{
				Train: path.Join(financial, "Train_Data.csv"),
				Test:  path.Join(financial, "Test_Data.csv"),
			},
			New: delimited(adapter.LayoutEntities),
			Tasks: map[derive.Task]derive.Rules{
				derive.TaskCategory:  documentCategoryRules,
				derive.TaskSentiment: documentSentimentRules,
			},
		},
		Entry{
			Name: "nlpcc2012-weibo-sa",
			Locators: adapter.Locators{
				Train: path.Join(nlpcc, "测试数据"),
				Test:  path.Join(nlpcc, "sonar-weibo-processed"),
			},
			New: weibo,
			Tasks: map[derive.Task]derive.Rules{
				derive.TaskTerm:      termRules,
				derive.TaskSentiment: {Scope: derive.ScopeSentence, DropEmpty: true},
			},
		},
		Entry{
			Name: "ASGCN-TWITTER",
			Locators: adapter.Locators{
				Train: path.Join("ASGCN", "acl-14-short-data", "train.raw"),
				Test:  path.Join("ASGCN", "acl-14-short-data", "test.raw"),
			},
			New:   placeholder,
			Tasks: map[derive.Task]derive.Rules{derive.TaskTerm: termRules},
		},
	)
}
